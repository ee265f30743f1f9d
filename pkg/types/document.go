package types

import "context"

// Document is the destination of a paste: its symbol table, its schema,
// and the mutation calls the orchestrator needs.
type Document interface {
	SymbolTable
	Schema

	// DeleteSymbol removes a symbol by name. Used only to undo symbols
	// created for a paste that was then rejected.
	DeleteSymbol(name string) error

	// MergeSubtree inserts root and everything under it as a new top-level
	// subtree at pos and returns the new root's ID. A rejection of the
	// content wraps ErrSchemaRejection.
	MergeSubtree(ctx context.Context, root *BlockNode, pos Position) (string, error)

	// RemoveSubtree deletes a previously merged subtree.
	RemoveSubtree(ctx context.Context, id string) error
}

// AtomicMerger is implemented by documents that can create symbols and
// merge subtrees in a single all-or-nothing step. Every root carries its
// Position.
type AtomicMerger interface {
	MergeAll(ctx context.Context, symbols []Symbol, roots []*BlockNode) ([]string, error)
}

// Clipboard is the external text clipboard.
type Clipboard interface {
	// Write replaces the clipboard contents with text.
	Write(ctx context.Context, text string) error

	// Read returns the clipboard contents; an empty clipboard is "".
	Read(ctx context.Context) (string, error)
}
