package clipboard

import (
	"context"
	"sync"
)

// Memory is a process-local clipboard. ReadErr and WriteErr, when set,
// make the corresponding call fail, emulating a host that refuses access.
type Memory struct {
	mu   sync.Mutex
	text string

	ReadErr  error
	WriteErr error
}

// NewMemory returns an empty clipboard.
func NewMemory() *Memory {
	return &Memory{}
}

// Write replaces the clipboard contents.
func (m *Memory) Write(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.text = text
	return nil
}

// Read returns the clipboard contents.
func (m *Memory) Read(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return "", m.ReadErr
	}
	return m.text, nil
}
