package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// merge commits the staged symbols and the placed roots. A schema
// rejection triggers exactly one retry with blank fields stripped; any
// final failure leaves the document as it was.
func merge(ctx context.Context, doc types.Document, symbols []types.Symbol, roots []*types.BlockNode) (ids []string, stripped int, retried bool, err error) {
	var attempt func() ([]string, error)
	if am, ok := doc.(types.AtomicMerger); ok {
		attempt = func() ([]string, error) {
			return am.MergeAll(ctx, symbols, roots)
		}
	} else {
		var created []types.Symbol
		created, err = createSymbols(doc, symbols)
		if err != nil {
			return nil, 0, false, err
		}
		defer func() {
			if err != nil {
				err = errors.Join(err, deleteSymbols(doc, created))
			}
		}()
		attempt = func() ([]string, error) {
			return mergeEach(ctx, doc, roots)
		}
	}

	ids, err = attempt()
	if err == nil || !errors.Is(err, types.ErrSchemaRejection) {
		return ids, 0, false, err
	}

	stripped = stripBlank(roots)
	logger.Warn("destination rejected the subtree (%v); retrying once without %d blank field(s)", err, stripped)
	ids, err = attempt()
	if err != nil {
		return nil, stripped, true, err
	}
	return ids, stripped, true, nil
}

// mergeEach merges roots one by one and removes the ones already merged
// if a later root fails.
func mergeEach(ctx context.Context, doc types.Document, roots []*types.BlockNode) ([]string, error) {
	ids := make([]string, 0, len(roots))
	for _, r := range roots {
		id, err := doc.MergeSubtree(ctx, r, *r.Position)
		if err != nil {
			for _, done := range ids {
				if rerr := doc.RemoveSubtree(ctx, done); rerr != nil {
					err = errors.Join(err, fmt.Errorf("undo merge of %s: %w", done, rerr))
				}
			}
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func createSymbols(doc types.Document, symbols []types.Symbol) ([]types.Symbol, error) {
	created := make([]types.Symbol, 0, len(symbols))
	for _, s := range symbols {
		if _, err := doc.CreateSymbol(s.Name, s.Type); err != nil {
			err = fmt.Errorf("create symbol %q: %w", s.Name, err)
			return nil, errors.Join(err, deleteSymbols(doc, created))
		}
		created = append(created, s)
	}
	return created, nil
}

func deleteSymbols(doc types.Document, symbols []types.Symbol) error {
	var errs []error
	for _, s := range symbols {
		if err := doc.DeleteSymbol(s.Name); err != nil {
			errs = append(errs, fmt.Errorf("undo symbol %q: %w", s.Name, err))
		}
	}
	return errors.Join(errs...)
}

// stripBlank removes every nil or empty-collection field under roots and
// returns how many were removed.
func stripBlank(roots []*types.BlockNode) int {
	n := 0
	for _, r := range roots {
		walk.Visit(r, func(b *types.BlockNode) {
			for name, f := range b.Fields {
				if f.IsBlank() {
					delete(b.Fields, name)
					n++
				}
			}
		})
	}
	return n
}
