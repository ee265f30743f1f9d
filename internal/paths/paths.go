// Package paths resolves configuration and data directory locations.
package paths

import (
	"os"
	"path/filepath"
	"runtime"
)

// AppName names the per-user configuration and data directories.
const AppName = "blockclip"

// CWD-relative directory name used for the data directory when nothing
// else is configured.
const DefaultDataDirName = ".blockclip"

// Environment variable names for directory overrides.
const (
	EnvConfigDir = "BLOCKCLIP_CONFIG_DIR"
	EnvDataDir   = "BLOCKCLIP_DATA_DIR"
)

// ClipboardFileName is the default file used by the file clipboard,
// relative to the data directory.
const ClipboardFileName = "clipboard.json"

// platformDir holds platform-detection functions that can be overridden in tests.
var platformDir = struct {
	homeDir       func() (string, error)
	userConfigDir func() (string, error)
}{
	homeDir:       os.UserHomeDir,
	userConfigDir: os.UserConfigDir,
}

// xdgDir returns $env/blockclip, or ~/<fallback...>/blockclip when env is
// unset.
func xdgDir(env string, fallback ...string) (string, error) {
	if xdg := os.Getenv(env); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := platformDir.homeDir()
	if err != nil {
		return "", err
	}
	parts := append([]string{home}, fallback...)
	return filepath.Join(append(parts, AppName)...), nil
}

// userDir returns os.UserConfigDir()/blockclip: ~/Library/Application
// Support on macOS and %APPDATA% on Windows.
func userDir() (string, error) {
	dir, err := platformDir.userConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, AppName), nil
}

// DefaultConfigDir returns the platform-specific default configuration directory.
//
// Linux:   $XDG_CONFIG_HOME/blockclip (fallback ~/.config/blockclip)
// macOS:   ~/Library/Application Support/blockclip
// Windows: %APPDATA%/blockclip
func DefaultConfigDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_CONFIG_HOME", ".config")
	}
	return userDir()
}

// DefaultDataDir returns the platform-specific default data directory.
//
// Linux:   $XDG_DATA_HOME/blockclip (fallback ~/.local/share/blockclip)
// macOS and Windows: same as the config directory.
func DefaultDataDir() (string, error) {
	if runtime.GOOS == "linux" {
		return xdgDir("XDG_DATA_HOME", ".local", "share")
	}
	return userDir()
}

// ResolveConfigDir returns the configuration directory following the
// precedence chain: flag > BLOCKCLIP_CONFIG_DIR > DefaultConfigDir().
func ResolveConfigDir(flag string) (string, error) {
	if flag != "" {
		return filepath.Abs(flag)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	return DefaultConfigDir()
}

// ResolveDataDir returns the data directory following the precedence chain:
// flag > config.yaml value > BLOCKCLIP_DATA_DIR > $(CWD)/.blockclip.
func ResolveDataDir(flag, configYAMLValue string) (string, error) {
	for _, v := range []string{flag, configYAMLValue, os.Getenv(EnvDataDir)} {
		if v != "" {
			return filepath.Abs(v)
		}
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultDataDirName), nil
}

// ResolveClipboardFile returns the file clipboard location: the configured
// value made absolute, or clipboard.json inside dataDir.
func ResolveClipboardFile(configYAMLValue, dataDir string) (string, error) {
	if configYAMLValue != "" {
		return filepath.Abs(configYAMLValue)
	}
	return filepath.Join(dataDir, ClipboardFileName), nil
}
