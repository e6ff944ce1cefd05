package matcher

import "testing"

func TestRequiredLiteral(t *testing.T) {
	tests := []struct {
		name       string
		pattern    string
		ignoreCase bool
		wantLit    string
		wantOK     bool
	}{
		{"pure literal", "timeout", false, "timeout", true},
		{"below min length", "ab", false, "", false},
		{"dot-star prefix", ".*timeout", false, "timeout", true},
		{"word boundary", `\bconnection\b`, false, "connection", true},
		{"picks longest", `error\s+timeout`, false, "timeout", true},
		{"lowercased", "ERROR", false, "error", true},
		{"case-insensitive flag", "timeout", true, "timeout", true},
		{"embedded fold", "(?i)timeout", false, "timeout", true},
		{"fold with s is unsafe", "(?i)status", false, "", false},
		{"case-sensitive s is fine", "status", false, "status", true},
		{"alternation", "foo|bar", false, "", false},
		{"optional group", `(?:error)?timeout`, false, "timeout", true},
		{"capture group", `(error)\d+`, false, "error", true},
		{"repeat min one", `(?:abc){2,}`, false, "abc", true},
		{"dot matches newline", `(?s)error.*`, false, "", false},
		{"non-ascii", "héllo", false, "", false},
		{"pcre syntax", `(?<=foo)bar`, false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lit, ok := requiredLiteral(tt.pattern, tt.ignoreCase)
			if ok != tt.wantOK {
				t.Fatalf("requiredLiteral(%q) ok = %v, want %v", tt.pattern, ok, tt.wantOK)
			}
			if lit != tt.wantLit {
				t.Errorf("requiredLiteral(%q) = %q, want %q", tt.pattern, lit, tt.wantLit)
			}
		})
	}
}
