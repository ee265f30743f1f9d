// This file stores block trees. Each node is one row of the blocks table;
// link and slot record how the row hangs off its parent.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// storedField is the column form of a types.Field.
type storedField struct {
	Value  any              `json:"value,omitempty"`
	Symbol *storedSymbolRef `json:"symbol,omitempty"`
}

type storedSymbolRef struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

func marshalFields(fields map[string]types.Field) (string, error) {
	out := make(map[string]storedField, len(fields))
	for name, f := range fields {
		sf := storedField{Value: f.Value}
		if f.Symbol != nil {
			sf = storedField{Symbol: &storedSymbolRef{Name: f.Symbol.Name, Type: f.Symbol.Type}}
		}
		out[name] = sf
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "", fmt.Errorf("marshaling fields: %w", err)
	}
	return string(data), nil
}

func unmarshalFields(data string) (map[string]types.Field, error) {
	var in map[string]storedField
	if err := json.Unmarshal([]byte(data), &in); err != nil {
		return nil, fmt.Errorf("unmarshaling fields: %w", err)
	}
	if len(in) == 0 {
		return nil, nil
	}
	out := make(map[string]types.Field, len(in))
	for name, sf := range in {
		if sf.Symbol != nil {
			out[name] = types.Ref(sf.Symbol.Name, sf.Symbol.Type)
			continue
		}
		out[name] = types.Literal(sf.Value)
	}
	return out, nil
}

// MergeSubtree stores a copy of root as a new top-level subtree at pos.
// The subtree is checked against the document first: blank fields and
// references to unknown symbols are rejected with
// *types.SchemaRejectionError.
func (b *Backend) MergeSubtree(ctx context.Context, root *types.BlockNode, pos types.Position) (string, error) {
	var id string
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		if err := checkTree(ctx, tx, root, nil); err != nil {
			return err
		}
		var err error
		id, err = insertTree(ctx, tx, root, &pos, false)
		return err
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// MergeAll creates symbols and merges roots in one transaction. Every root
// must carry its Position.
func (b *Backend) MergeAll(ctx context.Context, symbols []types.Symbol, roots []*types.BlockNode) ([]string, error) {
	var ids []string
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		pending := make(map[string]bool, len(symbols))
		for _, s := range symbols {
			if _, err := createSymbol(ctx, tx, "", s.Name, s.Type); err != nil {
				return err
			}
			pending[s.Name] = true
		}
		for _, r := range roots {
			if r == nil || r.Position == nil {
				kind := ""
				if r != nil {
					kind = r.Kind
				}
				return &types.SchemaRejectionError{Kind: kind, Msg: "root has no position"}
			}
			if err := checkTree(ctx, tx, r, pending); err != nil {
				return err
			}
			id, err := insertTree(ctx, tx, r, r.Position, false)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// checkTree rejects blank fields and references to symbols that are
// neither stored nor pending.
func checkTree(ctx context.Context, q querier, root *types.BlockNode, pending map[string]bool) error {
	if root == nil || root.Kind == "" {
		return types.ErrInvalidKind
	}
	return walk.VisitErr(root, func(n *types.BlockNode) error {
		if n.Kind == "" {
			return types.ErrInvalidKind
		}
		for name, f := range n.Fields {
			if f.IsBlank() {
				return &types.SchemaRejectionError{Kind: n.Kind, Field: name, Msg: "blank value"}
			}
			if !f.IsSymbol() || pending[f.Symbol.Name] {
				continue
			}
			_, err := lookupSymbol(ctx, q, f.Symbol.Name)
			if errors.Is(err, types.ErrNotFound) {
				return &types.SchemaRejectionError{Kind: n.Kind, Field: name, Msg: "unknown symbol"}
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// insertTree writes root and everything below it. With keepNext the root's
// Next chain is stored too; otherwise it is dropped. IDs are always
// assigned fresh.
func insertTree(ctx context.Context, q querier, root *types.BlockNode, pos *types.Position, keepNext bool) (string, error) {
	rootID := generateUUID()
	now := time.Now().UTC().Format(time.RFC3339)

	var insert func(n *types.BlockNode, id, parentID, link, slot string, pos *types.Position) error
	insert = func(n *types.BlockNode, id, parentID, link, slot string, pos *types.Position) error {
		if n.Kind == "" {
			return types.ErrInvalidKind
		}
		fields, err := marshalFields(n.Fields)
		if err != nil {
			return err
		}
		var parent, x, y any
		if parentID != "" {
			parent = parentID
		}
		if pos != nil {
			x, y = pos.X, pos.Y
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO blocks (block_id, root_id, parent_id, link, slot, kind, fields, x, y, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id, rootID, parent, link, slot, n.Kind, fields, x, y, now,
		); err != nil {
			return fmt.Errorf("inserting block: %w", err)
		}
		for _, s := range walk.Slots(n) {
			in := n.Inputs[s]
			if in == nil {
				continue
			}
			if in.Block != nil {
				if err := insert(in.Block, generateUUID(), id, linkInput, s, nil); err != nil {
					return err
				}
			}
			if in.Shadow != nil {
				if err := insert(in.Shadow, generateUUID(), id, linkShadow, s, nil); err != nil {
					return err
				}
			}
		}
		if n.Next != nil && (link != linkRoot || keepNext) {
			return insert(n.Next, generateUUID(), id, linkNext, "", nil)
		}
		return nil
	}

	if err := insert(root, rootID, "", linkRoot, "", pos); err != nil {
		return "", err
	}
	return rootID, nil
}

// Add stores root as given, keeping its Next chain and Position, and
// returns the new root ID.
func (b *Backend) Add(ctx context.Context, root *types.BlockNode) (string, error) {
	if root == nil {
		return "", types.ErrInvalidKind
	}
	var id string
	err := b.withTx(ctx, func(tx *sql.Tx) error {
		var err error
		id, err = insertTree(ctx, tx, root, root.Position, true)
		return err
	})
	return id, err
}

// RemoveSubtree deletes a top-level subtree.
func (b *Backend) RemoveSubtree(ctx context.Context, id string) error {
	return b.withTx(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM blocks WHERE block_id = ? AND link = ?", id, linkRoot,
		).Scan(&count); err != nil {
			return fmt.Errorf("querying root: %w", err)
		}
		if count == 0 {
			return types.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM blocks WHERE root_id = ?", id); err != nil {
			return fmt.Errorf("deleting subtree: %w", err)
		}
		return nil
	})
}

// RootIDs returns the IDs of top-level subtrees in insertion order.
func (b *Backend) RootIDs(ctx context.Context) ([]string, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, "SELECT block_id FROM blocks WHERE link = ? ORDER BY rowid", linkRoot)
	if err != nil {
		return nil, fmt.Errorf("querying roots: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning root: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Roots loads every top-level subtree in insertion order.
func (b *Backend) Roots(ctx context.Context) ([]*types.BlockNode, error) {
	ids, err := b.RootIDs(ctx)
	if err != nil {
		return nil, err
	}
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	out := make([]*types.BlockNode, 0, len(ids))
	for _, id := range ids {
		root, _, err := loadTree(ctx, db, id)
		if err != nil {
			return nil, err
		}
		out = append(out, root)
	}
	return out, nil
}

// Block loads the subtree holding id and returns the node with that ID,
// including everything attached below it.
func (b *Backend) Block(ctx context.Context, id string) (*types.BlockNode, error) {
	db, err := b.conn()
	if err != nil {
		return nil, err
	}
	var rootID string
	err = db.QueryRowContext(ctx, "SELECT root_id FROM blocks WHERE block_id = ?", id).Scan(&rootID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying block: %w", err)
	}
	_, nodes, err := loadTree(ctx, db, rootID)
	if err != nil {
		return nil, err
	}
	n, ok := nodes[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	return n, nil
}

type blockRow struct {
	id     string
	parent sql.NullString
	link   string
	slot   string
	node   *types.BlockNode
}

// loadTree assembles the tree rooted at rootID and returns it with an
// index of every node by ID.
func loadTree(ctx context.Context, q querier, rootID string) (*types.BlockNode, map[string]*types.BlockNode, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT block_id, parent_id, link, slot, kind, fields, x, y
		 FROM blocks WHERE root_id = ? ORDER BY rowid`, rootID)
	if err != nil {
		return nil, nil, fmt.Errorf("querying subtree: %w", err)
	}
	defer rows.Close()

	var list []blockRow
	nodes := make(map[string]*types.BlockNode)
	for rows.Next() {
		var r blockRow
		var fields string
		var x, y sql.NullFloat64
		n := &types.BlockNode{}
		if err := rows.Scan(&r.id, &r.parent, &r.link, &r.slot, &n.Kind, &fields, &x, &y); err != nil {
			return nil, nil, fmt.Errorf("scanning block: %w", err)
		}
		n.ID = r.id
		if n.Fields, err = unmarshalFields(fields); err != nil {
			return nil, nil, err
		}
		if x.Valid && y.Valid {
			n.Position = &types.Position{X: x.Float64, Y: y.Float64}
		}
		r.node = n
		list = append(list, r)
		nodes[r.id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	root, ok := nodes[rootID]
	if !ok {
		return nil, nil, types.ErrNotFound
	}
	for _, r := range list {
		if !r.parent.Valid {
			continue
		}
		parent, ok := nodes[r.parent.String]
		if !ok {
			return nil, nil, fmt.Errorf("block %s: missing parent %s", r.id, r.parent.String)
		}
		switch r.link {
		case linkNext:
			parent.Next = r.node
		case linkInput, linkShadow:
			var child, shadow *types.BlockNode
			if in := parent.Inputs[r.slot]; in != nil {
				child, shadow = in.Block, in.Shadow
			}
			if r.link == linkInput {
				child = r.node
			} else {
				shadow = r.node
			}
			parent.SetInput(r.slot, child, shadow)
		}
	}
	return root, nodes, nil
}
