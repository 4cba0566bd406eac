package config

import (
	"os"
	"path/filepath"
)

const defaultRuntimeDir = ".ideapartner"

// GetRuntimePath resolves the runtime directory before any config is parsed,
// so .env files inside it can be loaded first.
func GetRuntimePath() string {
	return resolveRuntimePath(os.Getenv("IDEA_RUNTIME_PATH"))
}

func resolveRuntimePath(path string) string {
	if path == "" {
		path = defaultRuntimeDir
	}
	if !filepath.IsAbs(path) {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path)
		}
	}
	return path
}
