package settings

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var marshalers = map[string]func(any) ([]byte, error){
	"yaml": yamlMarshal,
	"json": jsonMarshal,
	"toml": tomlMarshal,
}

// formatOf maps a file extension to a format name. Unknown extensions are
// treated as YAML.
func formatOf(path string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "json", "toml":
		return ext
	}
	return "yaml"
}

func marshal(format string, v any) ([]byte, error) {
	return marshalers[format](v)
}

func yamlMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := yaml.NewEncoder(buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func jsonMarshal(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func tomlMarshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := toml.NewEncoder(buf)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
