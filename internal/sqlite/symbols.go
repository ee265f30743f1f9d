// This file implements the symbol table on the symbols table.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// LookupSymbol returns the symbol named name or types.ErrNotFound.
func (b *Backend) LookupSymbol(name string) (*types.Symbol, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	return lookupSymbol(context.Background(), db, name)
}

func lookupSymbol(ctx context.Context, q querier, name string) (*types.Symbol, error) {
	var s types.Symbol
	err := q.QueryRowContext(ctx,
		"SELECT symbol_id, name, symbol_type FROM symbols WHERE name = ?", name,
	).Scan(&s.SymbolID, &s.Name, &s.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying symbol %q: %w", name, err)
	}
	return &s, nil
}

// CreateSymbol adds a symbol. Names are unique within the document.
func (b *Backend) CreateSymbol(name, symbolType string) (*types.Symbol, error) {
	var s *types.Symbol
	err := b.withTx(context.Background(), func(tx *sql.Tx) error {
		var err error
		s, err = createSymbol(context.Background(), tx, "", name, symbolType)
		return err
	})
	return s, err
}

// createSymbol inserts a symbol, keeping id when it is non-empty.
func createSymbol(ctx context.Context, q querier, id, name, symbolType string) (*types.Symbol, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	var count int
	if err := q.QueryRowContext(ctx, "SELECT COUNT(*) FROM symbols WHERE name = ?", name).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking symbol uniqueness: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("symbol %q: %w", name, types.ErrDuplicateName)
	}
	if id == "" {
		id = generateUUID()
	}
	_, err := q.ExecContext(ctx,
		"INSERT INTO symbols (symbol_id, name, symbol_type, created_at) VALUES (?, ?, ?, ?)",
		id, name, symbolType, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting symbol: %w", err)
	}
	return &types.Symbol{SymbolID: id, Name: name, Type: symbolType}, nil
}

// DeleteSymbol removes a symbol by name.
func (b *Backend) DeleteSymbol(name string) error {
	return b.withTx(context.Background(), func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM symbols WHERE name = ?", name)
		if err != nil {
			return fmt.Errorf("deleting symbol: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Symbols returns every symbol ordered by name.
func (b *Backend) Symbols() ([]types.Symbol, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query("SELECT symbol_id, name, symbol_type FROM symbols ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying symbols: %w", err)
	}
	defer rows.Close()

	var out []types.Symbol
	for rows.Next() {
		var s types.Symbol
		if err := rows.Scan(&s.SymbolID, &s.Name, &s.Type); err != nil {
			return nil, fmt.Errorf("scanning symbol: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
