package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	code := 0
	root := newRootCmd(&code)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(new(int))
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"render", "watch", "css", "export", "import", "toggle"} {
		assert.Contains(t, names, want)
	}
}

func TestToggleThenCSS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	queries := filepath.Join(t.TempDir(), "queries.json")
	require.NoError(t, writeFile(queries, `{"todo": {"pattern": "TODO", "color": "#ff0000", "decoration": "bold"}}`))

	out, err := execute(t, "import", "--settings", path, queries)
	require.NoError(t, err)
	assert.Equal(t, "Imported 1 queries: todo\n", out)

	out, err = execute(t, "css", "--settings", path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, ".todo {"), out)

	out, err = execute(t, "toggle", "--settings", path, "todo")
	require.NoError(t, err)
	assert.Contains(t, out, `Toggled "todo" OFF`)

	out, err = execute(t, "toggle", "--settings", path)
	require.NoError(t, err)
	assert.Contains(t, out, "toggle-adhl")
}

func TestRejectsBadFlags(t *testing.T) {
	_, err := execute(t, "css", "--color", "sometimes")
	assert.Error(t, err)

	_, err = execute(t, "render", "--count", "--json")
	assert.Error(t, err)
}

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0o644)
}
