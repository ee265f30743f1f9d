// Package memory implements an in-process host document: a symbol table,
// a field option schema, and a forest of block trees. It backs tests and
// hosts that keep their document in memory.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

var (
	_ types.Document     = (*Document)(nil)
	_ types.AtomicMerger = (*Document)(nil)
)

type fieldKey struct {
	kind  string
	field string
}

// Document is a host document held in memory. It is safe for concurrent
// use.
type Document struct {
	mu      sync.Mutex
	symbols map[string]types.Symbol
	options map[fieldKey][]string
	roots   map[string]*types.BlockNode
	order   []string
	probes  int

	// Check, when set, replaces the default merge check. Returning an
	// error wrapping types.ErrSchemaRejection rejects the subtree.
	Check func(root *types.BlockNode) error
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{
		symbols: make(map[string]types.Symbol),
		options: make(map[fieldKey][]string),
		roots:   make(map[string]*types.BlockNode),
	}
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}

// SetOptions declares field of kind as constrained to opts. An empty opts
// declares a constrained field whose option set is currently empty.
func (d *Document) SetOptions(kind, field string, opts ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options[fieldKey{kind, field}] = append([]string{}, opts...)
}

// LookupSymbol returns the symbol named name or types.ErrNotFound.
func (d *Document) LookupSymbol(name string) (*types.Symbol, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s, ok := d.symbols[name]
	if !ok {
		return nil, types.ErrNotFound
	}
	return &s, nil
}

// CreateSymbol adds a symbol.
func (d *Document) CreateSymbol(name, symbolType string) (*types.Symbol, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.createLocked(name, symbolType)
}

func (d *Document) createLocked(name, symbolType string) (*types.Symbol, error) {
	if name == "" {
		return nil, types.ErrInvalidName
	}
	if _, ok := d.symbols[name]; ok {
		return nil, types.ErrDuplicateName
	}
	s := types.Symbol{SymbolID: generateUUID(), Name: name, Type: symbolType}
	d.symbols[name] = s
	return &s, nil
}

// DeleteSymbol removes a symbol by name.
func (d *Document) DeleteSymbol(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.symbols[name]; !ok {
		return types.ErrNotFound
	}
	delete(d.symbols, name)
	return nil
}

// Symbols returns every symbol ordered by name.
func (d *Document) Symbols() []types.Symbol {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]types.Symbol, 0, len(d.symbols))
	for _, s := range d.symbols {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Probe opens an option probe for kind.
func (d *Document) Probe(kind string) (types.FieldProbe, error) {
	if kind == "" {
		return nil, types.ErrInvalidKind
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.probes++
	return &probe{doc: d, kind: kind}, nil
}

// OpenProbes returns the number of probes not yet released.
func (d *Document) OpenProbes() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.probes
}

type probe struct {
	doc      *Document
	kind     string
	released bool
}

func (p *probe) Options(field string) ([]string, bool, error) {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.released {
		return nil, false, errors.New("probe released")
	}
	opts, ok := p.doc.options[fieldKey{p.kind, field}]
	if !ok {
		return nil, false, nil
	}
	return append([]string{}, opts...), true, nil
}

func (p *probe) Release() error {
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if !p.released {
		p.released = true
		p.doc.probes--
	}
	return nil
}

// MergeSubtree stores a copy of root as a new top-level subtree at pos.
func (d *Document) MergeSubtree(ctx context.Context, root *types.BlockNode, pos types.Position) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.checkLocked(root, nil); err != nil {
		return "", err
	}
	return d.insertLocked(root, pos), nil
}

// MergeAll creates symbols and merges roots as one step; on any error the
// document is left unchanged.
func (d *Document) MergeAll(ctx context.Context, symbols []types.Symbol, roots []*types.BlockNode) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		if s.Name == "" {
			return nil, types.ErrInvalidName
		}
		if _, ok := d.symbols[s.Name]; ok || pending[s.Name] {
			return nil, fmt.Errorf("symbol %q: %w", s.Name, types.ErrDuplicateName)
		}
		pending[s.Name] = true
	}
	for _, r := range roots {
		if r.Position == nil {
			return nil, &types.SchemaRejectionError{Kind: r.Kind, Msg: "root has no position"}
		}
		if err := d.checkLocked(r, pending); err != nil {
			return nil, err
		}
	}

	for _, s := range symbols {
		if _, err := d.createLocked(s.Name, s.Type); err != nil {
			return nil, err
		}
	}
	ids := make([]string, 0, len(roots))
	for _, r := range roots {
		ids = append(ids, d.insertLocked(r, *r.Position))
	}
	return ids, nil
}

// checkLocked applies Check, or by default rejects blank fields and
// references to symbols that neither exist nor are pending.
func (d *Document) checkLocked(root *types.BlockNode, pending map[string]bool) error {
	if root == nil || root.Kind == "" {
		return types.ErrInvalidKind
	}
	if d.Check != nil {
		return d.Check(root)
	}
	return walk.VisitErr(root, func(n *types.BlockNode) error {
		if n.Kind == "" {
			return types.ErrInvalidKind
		}
		for name, f := range n.Fields {
			if f.IsBlank() {
				return &types.SchemaRejectionError{Kind: n.Kind, Field: name, Msg: "blank value"}
			}
			if f.IsSymbol() {
				if _, ok := d.symbols[f.Symbol.Name]; !ok && !pending[f.Symbol.Name] {
					return &types.SchemaRejectionError{Kind: n.Kind, Field: name, Msg: "unknown symbol"}
				}
			}
		}
		return nil
	})
}

func (d *Document) insertLocked(root *types.BlockNode, pos types.Position) string {
	stored := clone(root)
	stored.Position = &pos
	walk.Visit(stored, func(n *types.BlockNode) { n.ID = generateUUID() })
	d.roots[stored.ID] = stored
	d.order = append(d.order, stored.ID)
	return stored.ID
}

// RemoveSubtree deletes a top-level subtree.
func (d *Document) RemoveSubtree(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.roots[id]; !ok {
		return types.ErrNotFound
	}
	delete(d.roots, id)
	for i, o := range d.order {
		if o == id {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Add stores root as given, keeping its Next chain and Position, and
// assigns IDs to every node. It returns the root's ID.
func (d *Document) Add(root *types.BlockNode) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	walk.Visit(root, func(n *types.BlockNode) {
		if n.ID == "" {
			n.ID = generateUUID()
		}
	})
	d.roots[root.ID] = root
	d.order = append(d.order, root.ID)
	return root.ID
}

// Roots returns the top-level subtrees in insertion order.
func (d *Document) Roots() []*types.BlockNode {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*types.BlockNode, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.roots[id])
	}
	return out
}

// Block returns the live node with the given ID anywhere in the document.
func (d *Document) Block(id string) (*types.BlockNode, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, rid := range d.order {
		var found *types.BlockNode
		walk.Visit(d.roots[rid], func(n *types.BlockNode) {
			if found == nil && n.ID == id {
				found = n
			}
		})
		if found != nil {
			return found, nil
		}
	}
	return nil, types.ErrNotFound
}

func clone(n *types.BlockNode) *types.BlockNode {
	if n == nil {
		return nil
	}
	out := &types.BlockNode{Kind: n.Kind}
	for name, f := range n.Fields {
		if f.Symbol != nil {
			ref := *f.Symbol
			f = types.Field{Symbol: &ref}
		}
		out.SetField(name, f)
	}
	for slot, in := range n.Inputs {
		if in != nil {
			out.SetInput(slot, clone(in.Block), clone(in.Shadow))
		}
	}
	out.Next = clone(n.Next)
	return out
}
