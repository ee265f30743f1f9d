// Package reconcile maps the symbol references of a pasted subtree onto
// the destination document's symbol table.
//
// Reconciliation is staged. A Reconciler reads the destination table but
// never writes to it; symbols it needs to create are held in an overlay
// and handed to the caller through Pending, to be created together with
// the merge of the subtree that uses them.
//
// Rename candidates are Name_Copy, Name_Copy2, and so on. A candidate that
// already exists with the declared type is reused rather than skipped in
// favor of a fresh name, so pasting the same payload again creates no
// further copies.
package reconcile

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// copySuffix is appended to a conflicting name; the second candidate gets
// "2", the third "3", and so on.
const copySuffix = "_Copy"

// maxCandidates bounds the rename search.
const maxCandidates = 10000

// Rename records a reference that was pointed at a new symbol because the
// destination already had a symbol of the same name with another type.
type Rename struct {
	From string // Name in the payload
	To   string // Name of the symbol the reference now uses
	Type string // Declared type that caused the conflict
}

// Reconciler resolves symbol references for one paste.
type Reconciler struct {
	table   types.SymbolTable
	staged  map[string]types.Symbol
	order   []string
	renames []Rename
}

// New returns a Reconciler reading table.
func New(table types.SymbolTable) *Reconciler {
	return &Reconciler{
		table:  table,
		staged: make(map[string]types.Symbol),
	}
}

// Reconcile returns the symbol a reference to (name, declaredType) should
// use in the destination:
//
//   - an existing symbol of that name whose type matches, or any existing
//     symbol of that name when declaredType is empty;
//   - a staged new symbol when the name is unused;
//   - on a type conflict, a symbol under the first of name_Copy,
//     name_Copy2, name_Copy3, ... that is unused or already holds
//     declaredType. The existing symbol is never modified.
//
// Calling Reconcile again with the same arguments returns the same symbol
// and stages nothing new.
func (r *Reconciler) Reconcile(name, declaredType string) (types.Symbol, error) {
	if name == "" {
		return types.Symbol{}, types.ErrInvalidName
	}
	sym, found, err := r.lookup(name)
	if err != nil {
		return types.Symbol{}, err
	}
	if !found {
		return r.stage(name, declaredType), nil
	}
	if compatible(sym, declaredType) {
		return sym, nil
	}

	for i := 1; i <= maxCandidates; i++ {
		candidate := name + copySuffix
		if i > 1 {
			candidate = fmt.Sprintf("%s%s%d", name, copySuffix, i)
		}
		existing, taken, err := r.lookup(candidate)
		if err != nil {
			return types.Symbol{}, err
		}
		if taken && existing.Type != declaredType {
			continue
		}
		if !r.renamed(name, candidate) {
			r.renames = append(r.renames, Rename{From: name, To: candidate, Type: declaredType})
		}
		if taken {
			return existing, nil
		}
		return r.stage(candidate, declaredType), nil
	}
	return types.Symbol{}, fmt.Errorf("no free name for %q after %d candidates", name, maxCandidates)
}

// ReconcileTree reconciles every symbol reference field under root and
// rewrites each reference to the name and type of the symbol it resolved
// to.
func (r *Reconciler) ReconcileTree(root *types.BlockNode) error {
	return walk.VisitErr(root, func(n *types.BlockNode) error {
		for _, name := range fieldNames(n) {
			f := n.Fields[name]
			if !f.IsSymbol() {
				continue
			}
			sym, err := r.Reconcile(f.Symbol.Name, f.Symbol.Type)
			if err != nil {
				return fmt.Errorf("reconcile %s.%s: %w", n.Kind, name, err)
			}
			n.Fields[name] = types.Ref(sym.Name, sym.Type)
		}
		return nil
	})
}

// Pending returns the symbols staged for creation, in staging order.
func (r *Reconciler) Pending() []types.Symbol {
	out := make([]types.Symbol, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.staged[name])
	}
	return out
}

// Renames returns the conflict renames performed so far.
func (r *Reconciler) Renames() []Rename {
	return append([]Rename(nil), r.renames...)
}

// lookup consults the staged overlay first, then the destination table.
func (r *Reconciler) lookup(name string) (types.Symbol, bool, error) {
	if s, ok := r.staged[name]; ok {
		return s, true, nil
	}
	s, err := r.table.LookupSymbol(name)
	if errors.Is(err, types.ErrNotFound) {
		return types.Symbol{}, false, nil
	}
	if err != nil {
		return types.Symbol{}, false, fmt.Errorf("lookup symbol %q: %w", name, err)
	}
	return *s, true, nil
}

func (r *Reconciler) stage(name, symbolType string) types.Symbol {
	s := types.Symbol{Name: name, Type: symbolType}
	r.staged[name] = s
	r.order = append(r.order, name)
	return s
}

func (r *Reconciler) renamed(from, to string) bool {
	for _, rn := range r.renames {
		if rn.From == from && rn.To == to {
			return true
		}
	}
	return false
}

// compatible reports whether a reference declaring symbolType may use s.
// A reference with no declared type is compatible with any symbol.
func compatible(s types.Symbol, symbolType string) bool {
	return symbolType == "" || s.Type == symbolType
}

// fieldNames returns the field names of n in lexical order so staging
// order does not depend on map iteration.
func fieldNames(n *types.BlockNode) []string {
	names := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
