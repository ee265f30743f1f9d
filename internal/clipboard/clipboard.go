// Package clipboard provides the text clipboards a host can hand to the
// transfer orchestrator: the desktop clipboard, a file standing in for it
// on headless machines, and an in-memory one.
package clipboard

import (
	"context"
	"errors"
	"fmt"

	sysclip "github.com/atotto/clipboard"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// ErrUnsupported is returned when no desktop clipboard utility is present.
var ErrUnsupported = errors.New("system clipboard is not supported in this environment")

var _ types.Clipboard = (*System)(nil)

// System is the desktop clipboard (pbcopy, xclip/xsel/wl-clipboard, or
// the Windows clipboard, whichever the platform provides).
type System struct{}

// NewSystem returns the desktop clipboard.
func NewSystem() *System {
	return &System{}
}

// Write replaces the desktop clipboard contents.
func (s *System) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if sysclip.Unsupported {
		return ErrUnsupported
	}
	if err := sysclip.WriteAll(text); err != nil {
		return fmt.Errorf("write system clipboard: %w", err)
	}
	return nil
}

// Read returns the desktop clipboard contents.
func (s *System) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if sysclip.Unsupported {
		return "", ErrUnsupported
	}
	text, err := sysclip.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read system clipboard: %w", err)
	}
	return text, nil
}

// New returns the clipboard named by cfg.Clipboard.
func New(cfg types.Config) (types.Clipboard, error) {
	switch cfg.Clipboard {
	case "", types.ClipboardSystem:
		return NewSystem(), nil
	case types.ClipboardFile:
		if cfg.ClipboardFile == "" {
			return nil, types.ErrClipboardFileEmpty
		}
		return NewFile(cfg.ClipboardFile), nil
	case types.ClipboardMemory:
		return NewMemory(), nil
	default:
		return nil, types.ErrClipboardUnknown
	}
}
