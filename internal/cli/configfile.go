package cli

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// LoadConfigArgs reads the gohl dotfile and returns parsed arguments.
// Location: GOHL_CONFIG_PATH env var, or ~/.gohl.
// Format: one flag per line, # comments, empty lines ignored.
// Returns nil if no config file found.
func LoadConfigArgs() []string {
	path := os.Getenv("GOHL_CONFIG_PATH")
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil
		}
		path = filepath.Join(home, ".gohl")
	}

	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var args []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		args = append(args, line)
	}
	return args
}

// MergeArgs inserts dotfile flags right after the first argument naming a
// command, so flags given on the command line, parsed later, win. Without a
// command args is returned unchanged.
func MergeArgs(args, dotfile []string, isCommand func(string) bool) []string {
	if len(dotfile) == 0 {
		return args
	}
	for i, a := range args {
		if a == "--" {
			break
		}
		if !isCommand(a) {
			continue
		}
		out := make([]string, 0, len(args)+len(dotfile))
		out = append(out, args[:i+1]...)
		out = append(out, dotfile...)
		return append(out, args[i+1:]...)
	}
	return args
}
