package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvPrefix prefixes environment overrides, e.g. FRAUDGRAPH_NEO4J_URI.
const EnvPrefix = "FRAUDGRAPH"

// HomeEnv overrides the home directory.
const HomeEnv = EnvPrefix + "_HOME"

// DefaultHomeDir returns the fraudgraph home directory: $FRAUDGRAPH_HOME when
// set, otherwise ~/.fraudgraph, falling back to a temporary directory if the
// user home cannot be determined.
func DefaultHomeDir() string {
	if home := os.Getenv(HomeEnv); home != "" {
		if expanded, err := ExpandPath(home); err == nil {
			return expanded
		}
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".fraudgraph")
	}
	return filepath.Join(userHome, ".fraudgraph")
}

// DefaultConfigPath returns the default config file path for a given home directory
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}

// ExpandPath expands a leading ~ to the user home directory, then $VAR and
// ${VAR} references, and cleans the result. An empty path stays empty.
//
//   - "~/.fraudgraph/config.yaml" -> "/home/user/.fraudgraph/config.yaml"
//   - "$REPORTS/weekly.xlsx"      -> "/srv/reports/weekly.xlsx"
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, strings.TrimPrefix(path[1:], "/"))
	}

	return filepath.Clean(os.ExpandEnv(path)), nil
}
