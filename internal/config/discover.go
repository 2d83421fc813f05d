package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfigDir names the environment variable that points at an
// alternate configuration directory, checked before the per-user
// locations.
const EnvConfigDir = "DAGFORGE_CONFIG_DIR"

// FindPlatformFile locates the configuration file for a platform.
// When explicit is set it must exist and wins outright. Otherwise the
// candidates are tried in order: $DAGFORGE_CONFIG_DIR/platforms,
// $HOME/.dagforge/platforms, $XDG_CONFIG_HOME/dagforge/platforms, then
// any extra directories. The first existing <name>.yaml wins; a miss
// reports every path that was tried.
func FindPlatformFile(name, explicit string, extraDirs []string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("platform file not found: %s: %w", explicit, err)
		}
		return explicit, nil
	}

	dirs := PlatformSearchDirs(extraDirs)

	tried := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		tried = append(tried, candidate)
	}

	return "", fmt.Errorf("platform file not found for %q (searched: %s)", name, strings.Join(tried, ", "))
}

// PlatformSearchDirs returns the directories FindPlatformFile searches,
// in search order, with any extra directories appended.
func PlatformSearchDirs(extraDirs []string) []string {
	var dirs []string
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		dirs = append(dirs, filepath.Join(dir, "platforms"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".dagforge", "platforms"))
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, "dagforge", "platforms"))
	}
	return append(dirs, extraDirs...)
}
