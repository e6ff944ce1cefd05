package walker

import (
	"path/filepath"
	"slices"
	"strings"
)

// DefaultExtensions are the document types picked up when walking.
var DefaultExtensions = []string{".md", ".markdown", ".txt"}

// hasExtension reports whether name ends in one of exts, ignoring case.
func hasExtension(name string, exts []string) bool {
	return slices.Contains(exts, strings.ToLower(filepath.Ext(name)))
}

// skipDir returns true for directories that should be skipped.
// VCS directories are always skipped; other hidden ones unless hidden is set.
func skipDir(name string, hidden bool) bool {
	switch name {
	case ".git", ".svn", ".hg", ".obsidian", ".trash":
		return true
	}
	return !hidden && strings.HasPrefix(name, ".")
}

func skipFile(name string, hidden bool, exts []string) bool {
	if !hidden && strings.HasPrefix(name, ".") {
		return true
	}
	return !hasExtension(name, exts)
}
