package matcher

import (
	"regexp/syntax"
	"strings"
	"unicode"
)

const minPrefilterLen = 3

// requiredLiteral parses a regex body and returns the longest ASCII literal
// that must appear in any match, lowercased. Lines not containing it (after
// lowercasing) cannot match and are skipped without running the regex.
func requiredLiteral(pattern string, ignoreCase bool) (string, bool) {
	flags := syntax.Perl
	if ignoreCase {
		flags |= syntax.FoldCase
	}
	re, err := syntax.Parse(pattern, flags)
	if err != nil {
		return "", false
	}
	re = re.Simplify()
	if hasDotNL(re) {
		return "", false
	}

	var best candidate
	for _, c := range candidates(re) {
		if len(c.runes) > len(best.runes) && isASCIIRunes(c.runes) {
			best = c
		}
	}
	lit := strings.ToLower(string(best.runes))
	if len(lit) < minPrefilterLen {
		return "", false
	}
	// Folding maps U+017F to s and U+212A to k, which ToLower on the
	// line does not undo.
	if (best.foldCase || ignoreCase) && strings.ContainsAny(lit, "sk") {
		return "", false
	}
	return lit, true
}

type candidate struct {
	runes    []rune
	foldCase bool
}

func candidates(re *syntax.Regexp) []candidate {
	switch re.Op {
	case syntax.OpLiteral:
		if len(re.Rune) == 0 {
			return nil
		}
		return []candidate{{runes: re.Rune, foldCase: re.Flags&syntax.FoldCase != 0}}
	case syntax.OpConcat:
		return concatCandidates(re.Sub)
	case syntax.OpCapture, syntax.OpPlus:
		if len(re.Sub) > 0 {
			return candidates(re.Sub[0])
		}
	case syntax.OpRepeat:
		if re.Min >= 1 && len(re.Sub) > 0 {
			return candidates(re.Sub[0])
		}
	}
	// Star, quest, alternation, classes and anchors require nothing.
	return nil
}

// concatCandidates merges runs of adjacent literals with the same fold flag.
func concatCandidates(subs []*syntax.Regexp) []candidate {
	var out []candidate
	var run []rune
	var fold bool
	flush := func() {
		if len(run) > 0 {
			out = append(out, candidate{runes: run, foldCase: fold})
			run = nil
		}
	}
	for _, sub := range subs {
		if sub.Op == syntax.OpLiteral && len(sub.Rune) > 0 {
			fc := sub.Flags&syntax.FoldCase != 0
			if len(run) > 0 && fc != fold {
				flush()
			}
			fold = fc
			run = append(run, sub.Rune...)
			continue
		}
		flush()
		out = append(out, candidates(sub)...)
	}
	flush()
	return out
}

func hasDotNL(re *syntax.Regexp) bool {
	if re.Op == syntax.OpAnyChar {
		return true
	}
	for _, sub := range re.Sub {
		if hasDotNL(sub) {
			return true
		}
	}
	return false
}

func isASCIIRunes(runes []rune) bool {
	for _, r := range runes {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
