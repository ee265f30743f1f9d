package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File keeps the clipboard text in a file. Writes are atomic: the text is
// written to a temp file, synced, and renamed over the target.
type File struct {
	path string
}

// NewFile returns a clipboard stored at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// Path returns the backing file path.
func (f *File) Path() string { return f.path }

// Write replaces the clipboard file contents.
func (f *File) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating clipboard dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".clipboard-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing clipboard: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Read returns the clipboard file contents; a missing file reads as "".
func (f *File) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading clipboard: %w", err)
	}
	return string(data), nil
}
