package types

import (
	"errors"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:    "empty backend returns ErrBackendEmpty",
			config:  Config{Backend: "", DataDir: "/tmp/data"},
			wantErr: ErrBackendEmpty,
		},
		{
			name:    "unknown backend returns ErrBackendUnknown",
			config:  Config{Backend: "postgres", DataDir: "/tmp/data"},
			wantErr: ErrBackendUnknown,
		},
		{
			name:    "valid sqlite config",
			config:  Config{Backend: "sqlite", DataDir: "/tmp/data"},
			wantErr: nil,
		},
		{
			name:    "memory backend is valid",
			config:  Config{Backend: "memory"},
			wantErr: nil,
		},
		{
			name:    "unknown clipboard returns ErrClipboardUnknown",
			config:  Config{Backend: "sqlite", Clipboard: "x11"},
			wantErr: ErrClipboardUnknown,
		},
		{
			name:    "file clipboard without path returns ErrClipboardFileEmpty",
			config:  Config{Backend: "sqlite", Clipboard: "file"},
			wantErr: ErrClipboardFileEmpty,
		},
		{
			name:    "file clipboard with path is valid",
			config:  Config{Backend: "sqlite", Clipboard: "file", ClipboardFile: "/tmp/clip.json"},
			wantErr: nil,
		},
		{
			name:    "unknown placement returns ErrPlacementUnknown",
			config:  Config{Backend: "sqlite", Placement: "grid"},
			wantErr: ErrPlacementUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error %v, got nil", tt.wantErr)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestConfigPlacementMode(t *testing.T) {
	if got := (Config{}).PlacementMode(); got != PlacementRelative {
		t.Errorf("PlacementMode() = %q, want %q", got, PlacementRelative)
	}
	if got := (Config{Placement: PlacementAbsolute}).PlacementMode(); got != PlacementAbsolute {
		t.Errorf("PlacementMode() = %q, want %q", got, PlacementAbsolute)
	}
}
