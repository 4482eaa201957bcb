package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandTilde resolves a leading ~ to the user's home directory for local
// paths such as the node list and log directory. ~user is left alone.
func ExpandTilde(path string) string {
	rest, ok := strings.CutPrefix(path, "~")
	if !ok || (rest != "" && rest[0] != '/') {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
