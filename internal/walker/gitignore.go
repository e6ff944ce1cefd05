package walker

import (
	"path/filepath"

	ignore "github.com/sabhiram/go-gitignore"
)

// ignoreLayer holds the .gitignore rules of one directory. A nil parser means
// the directory has no usable .gitignore.
type ignoreLayer struct {
	dir    string
	parser *ignore.GitIgnore
}

// loadIgnoreLayer compiles dir/.gitignore if present.
func loadIgnoreLayer(dir string) ignoreLayer {
	parser, err := ignore.CompileIgnoreFile(filepath.Join(dir, ".gitignore"))
	if err != nil {
		return ignoreLayer{dir: dir}
	}
	return ignoreLayer{dir: dir, parser: parser}
}

// childLayers returns parent's layers plus dir's own. Parsers are immutable
// and shared between goroutines.
func childLayers(parent []ignoreLayer, dir string) []ignoreLayer {
	out := make([]ignoreLayer, len(parent), len(parent)+1)
	copy(out, parent)
	return append(out, loadIgnoreLayer(dir))
}

// ignored reports whether any layer excludes fullPath.
func ignored(layers []ignoreLayer, fullPath string, isDir bool) bool {
	for _, layer := range layers {
		if layer.parser == nil {
			continue
		}
		rel, err := filepath.Rel(layer.dir, fullPath)
		if err != nil {
			continue
		}
		if isDir {
			rel += "/"
		}
		if layer.parser.MatchesPath(rel) {
			return true
		}
	}
	return false
}
