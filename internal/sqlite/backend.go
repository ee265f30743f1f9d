// Package sqlite implements the host document API on a SQLite file:
// block trees, the symbol table, and the field option schema of one
// document.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// DBFileName is the document file created in the data directory.
const DBFileName = "blockclip.db"

var (
	_ types.Document     = (*Backend)(nil)
	_ types.AtomicMerger = (*Backend)(nil)
)

// Backend is a document stored in SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{}
}

// Attach opens (creating if needed) the document in config.DataDir.
// Returns types.ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if config.Backend != types.BackendSQLite {
		return types.ErrBackendUnknown
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	dsn := filepath.Join(dataDir, DBFileName) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("applying schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true
	return nil
}

// Detach closes the document. Idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if err := b.db.Close(); err != nil {
		return err
	}
	b.db = nil
	b.attached = false
	return nil
}

// conn returns the open database or types.ErrDetached.
func (b *Backend) conn() (*sql.DB, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.attached {
		return nil, types.ErrDetached
	}
	return b.db, nil
}

// withTx runs fn in a transaction and commits it when fn succeeds.
func (b *Backend) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db, err := b.conn()
	if err != nil {
		return err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
