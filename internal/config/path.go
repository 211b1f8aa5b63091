package config

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath resolves a configured file path. Environment variables are
// expanded first, so a variable holding "~/sfx" still reaches the home
// directory; a leading ~ then becomes the home directory and the result is
// cleaned. An empty path stays empty so callers can detect "unset".
func ExpandPath(path string) string {
	path = os.ExpandEnv(strings.TrimSpace(path))
	if path == "" {
		return ""
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + path[1:]
		}
	}
	return filepath.Clean(path)
}
