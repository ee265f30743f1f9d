// Config loading for the blockclip CLI.
package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyBackend       = "backend"
	cfgKeyDataDir       = "data_dir"
	cfgKeyClipboard     = "clipboard"
	cfgKeyClipboardFile = "clipboard_file"
	cfgKeyPlacement     = "placement"
	cfgKeyVerbose       = "verbose"
)

// defaultConfigYAML is the content written to config.yaml on first run.
const defaultConfigYAML = `# blockclip configuration

# Document store
backend: sqlite

# Data directory (optional; overridable by --data-dir flag)
# data_dir:

# Clipboard: system, file, or memory
clipboard: system

# File clipboard location (default: <data_dir>/clipboard.json)
# clipboard_file:

# Placement of pasted selections: relative or absolute
placement: relative

verbose: false
`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyBackend, types.BackendSQLite)
	v.SetDefault(cfgKeyClipboard, types.ClipboardSystem)
	v.SetDefault(cfgKeyPlacement, types.PlacementRelative)
	v.SetDefault(cfgKeyVerbose, false)
	v.SetDefault(cfgKeyDataDir, "")
	v.SetDefault(cfgKeyClipboardFile, "")
	v.SetEnvPrefix("BLOCKCLIP")
	v.AutomaticEnv()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// ensureDefaultConfigFile creates a default config.yaml if the file does
// not exist in configDir.
func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}
