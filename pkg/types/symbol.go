package types

// Symbol is a named, typed entry in a document's symbol table. Names are
// unique within one table.
type Symbol struct {
	SymbolID string `json:"symbol_id"` // Host identity, UUID v7 in the bundled hosts.
	Name     string `json:"name"`      // Unique name (required, non-empty).
	Type     string `json:"type"`      // Declared type tag; may be empty.
}

// SymbolTable is the destination's live symbol table.
type SymbolTable interface {
	// LookupSymbol returns the symbol with the given name.
	// Returns ErrNotFound if no symbol has that name.
	LookupSymbol(name string) (*Symbol, error)

	// CreateSymbol adds a symbol. Returns ErrInvalidName if name is empty
	// and ErrDuplicateName if the name is taken.
	CreateSymbol(name, symbolType string) (*Symbol, error)
}
