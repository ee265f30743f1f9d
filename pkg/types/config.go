package types

import "errors"

// Config holds the store, clipboard, and placement settings for a host.
type Config struct {
	Backend       string `json:"backend" yaml:"backend" mapstructure:"backend"`
	DataDir       string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
	Clipboard     string `json:"clipboard" yaml:"clipboard" mapstructure:"clipboard"`
	ClipboardFile string `json:"clipboard_file" yaml:"clipboard_file" mapstructure:"clipboard_file"`
	Placement     string `json:"placement" yaml:"placement" mapstructure:"placement"`
	Verbose       bool   `json:"verbose" yaml:"verbose" mapstructure:"verbose"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Supported clipboard names.
const (
	ClipboardSystem = "system"
	ClipboardFile   = "file"
	ClipboardMemory = "memory"
)

// Placement modes.
const (
	PlacementRelative = "relative"
	PlacementAbsolute = "absolute"
)

// Config validation errors.
var (
	ErrBackendEmpty       = errors.New("backend must not be empty")
	ErrBackendUnknown     = errors.New("unknown backend")
	ErrClipboardUnknown   = errors.New("unknown clipboard")
	ErrClipboardFileEmpty = errors.New("clipboard_file is required for the file clipboard")
	ErrPlacementUnknown   = errors.New("unknown placement mode")
)

var knownBackends = map[string]bool{
	BackendSQLite: true,
	BackendMemory: true,
}

var knownClipboards = map[string]bool{
	"":              true,
	ClipboardSystem: true,
	ClipboardFile:   true,
	ClipboardMemory: true,
}

var knownPlacements = map[string]bool{
	"":                true,
	PlacementRelative: true,
	PlacementAbsolute: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure. An empty Clipboard means system and
// an empty Placement means relative.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if !knownClipboards[c.Clipboard] {
		return ErrClipboardUnknown
	}
	if c.Clipboard == ClipboardFile && c.ClipboardFile == "" {
		return ErrClipboardFileEmpty
	}
	if !knownPlacements[c.Placement] {
		return ErrPlacementUnknown
	}
	return nil
}

// PlacementMode returns the effective placement mode.
func (c Config) PlacementMode() string {
	if c.Placement == "" {
		return PlacementRelative
	}
	return c.Placement
}
