// Package sqlite provides the public API for the SQLite host document.
// This package exposes the factory function for creating SQLite documents
// while keeping implementation details internal.
package sqlite

import (
	"github.com/mesh-intelligence/blockclip/internal/sqlite"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Document is a host document stored in a SQLite file. It supports
// atomic merges.
type Document interface {
	types.Document
	types.AtomicMerger

	// Attach opens or creates the document in config.DataDir.
	Attach(config types.Config) error

	// Detach closes the document. Idempotent.
	Detach() error

	// SetOptions constrains field of kind to opts.
	SetOptions(kind, field string, opts ...string) error
}

// NewBackend creates a new SQLite document.
// The document is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	doc := sqlite.NewBackend()
//	err := doc.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".blockclip",
//	})
//	defer doc.Detach()
func NewBackend() Document {
	return sqlite.NewBackend()
}
