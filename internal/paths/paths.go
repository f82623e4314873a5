// Package paths resolves configuration and data directory locations for
// the quest catalog.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// Environment variable names for directory overrides.
const (
	EnvConfigDir   = "QUEST_CONFIG_DIR"
	EnvBaseDir     = "QUEST_BASE_DIR"
	EnvProjectsDir = "QUEST_PROJECTS_DIR"
)

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/quest (fallback ~/.config/quest)
// macOS:   ~/Library/Application Support/quest
// Windows: %APPDATA%/quest
func DefaultConfigDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "quest"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".config", "quest"), nil
	default:
		// macOS and Windows use os.UserConfigDir which returns
		// ~/Library/Application Support on macOS and %APPDATA% on Windows.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "quest"), nil
	}
}

// DefaultBaseDir returns the platform-specific default base (data) directory.
//
// Linux:   $XDG_DATA_HOME/quest (fallback ~/.local/share/quest)
// macOS:   ~/Library/Application Support/quest
// Windows: %APPDATA%/quest
func DefaultBaseDir() (string, error) {
	switch runtime.GOOS {
	case "linux":
		if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
			return filepath.Join(xdg, "quest"), nil
		}
		home, err := platformDir.homeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, ".local", "share", "quest"), nil
	default:
		// macOS and Windows: same as config dir.
		dir, err := platformDir.userConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(dir, "quest"), nil
	}
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > QUEST_CONFIG_DIR env > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveBaseDir returns the base directory following the precedence
// chain: flag > configYAMLValue > QUEST_BASE_DIR env > DefaultBaseDir().
func ResolveBaseDir(flag, configYAMLValue string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	if env := os.Getenv(EnvBaseDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultBaseDir()
}

// ResolveProjectsDir returns the projects root following the precedence
// chain: flag > configYAMLValue > QUEST_PROJECTS_DIR env > baseDir/projects.
// Relative config values resolve under baseDir.
func ResolveProjectsDir(flag, configYAMLValue, baseDir string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if configYAMLValue != "" {
		if filepath.IsAbs(configYAMLValue) {
			return configYAMLValue, nil
		}
		return filepath.Join(baseDir, configYAMLValue), nil
	}
	if env := os.Getenv(EnvProjectsDir); env != "" {
		return filepath.Abs(env)
	}
	return filepath.Join(baseDir, "projects"), nil
}
