// This file implements the field option schema: which fields of a kind
// are constrained and the options each currently offers.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// SetOptions declares field of kind as constrained to opts, replacing any
// earlier option set. An empty opts leaves the field constrained with no
// options.
func (b *Backend) SetOptions(kind, field string, opts ...string) error {
	if kind == "" {
		return types.ErrInvalidKind
	}
	if field == "" {
		return types.ErrInvalidName
	}
	return b.withTx(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(
			"INSERT OR IGNORE INTO field_constraints (kind, field) VALUES (?, ?)", kind, field,
		); err != nil {
			return fmt.Errorf("declaring constraint: %w", err)
		}
		if _, err := tx.Exec(
			"DELETE FROM field_options WHERE kind = ? AND field = ?", kind, field,
		); err != nil {
			return fmt.Errorf("clearing options: %w", err)
		}
		for i, opt := range opts {
			if _, err := tx.Exec(
				"INSERT INTO field_options (kind, field, ordinal, option) VALUES (?, ?, ?, ?)",
				kind, field, i, opt,
			); err != nil {
				return fmt.Errorf("inserting option: %w", err)
			}
		}
		return nil
	})
}

// ClearOptions makes field of kind free-form again.
func (b *Backend) ClearOptions(kind, field string) error {
	return b.withTx(context.Background(), func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM field_constraints WHERE kind = ? AND field = ?", kind, field)
		if err != nil {
			return fmt.Errorf("clearing constraint: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Options returns the option set of field and whether it is constrained.
func (b *Backend) Options(kind, field string) ([]string, bool, error) {
	db, err := b.conn()
	if err != nil {
		return nil, false, err
	}
	return options(context.Background(), db, kind, field)
}

func options(ctx context.Context, q querier, kind, field string) ([]string, bool, error) {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM field_constraints WHERE kind = ? AND field = ?", kind, field,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("querying constraint: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		"SELECT option FROM field_options WHERE kind = ? AND field = ? ORDER BY ordinal", kind, field,
	)
	if err != nil {
		return nil, false, fmt.Errorf("querying options: %w", err)
	}
	defer rows.Close()

	opts := []string{}
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, false, fmt.Errorf("scanning option: %w", err)
		}
		opts = append(opts, o)
	}
	return opts, true, rows.Err()
}

// Probe opens a transaction answering option queries for kind. The
// transaction is rolled back on Release.
func (b *Backend) Probe(kind string) (types.FieldProbe, error) {
	if kind == "" {
		return nil, types.ErrInvalidKind
	}
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, fmt.Errorf("opening probe: %w", err)
	}
	return &probe{tx: tx, kind: kind}, nil
}

type probe struct {
	tx   *sql.Tx
	kind string
	done bool
}

func (p *probe) Options(field string) ([]string, bool, error) {
	if p.done {
		return nil, false, errors.New("probe released")
	}
	return options(context.Background(), p.tx, p.kind, field)
}

func (p *probe) Release() error {
	if p.done {
		return nil
	}
	p.done = true
	if err := p.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("releasing probe: %w", err)
	}
	return nil
}
