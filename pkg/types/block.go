// Block tree entities: nodes, input slots, fields, and positions.
package types

// BlockNode is one node of a document tree.
type BlockNode struct {
	// ID is the host identity of a live node. It is never serialized into
	// a clipboard payload.
	ID string

	// Kind is the schema identifier of the node (required, non-empty).
	Kind string

	// Fields maps a field name to its literal value or symbol reference.
	Fields map[string]Field

	// Inputs maps a slot name to the child and shadow nodes plugged into it.
	Inputs map[string]*Input

	// Next is the node immediately following this one in the same sequence.
	Next *BlockNode

	// Position is set only on subtree roots, in document coordinates.
	Position *Position
}

// Input is a named slot on a BlockNode. Either side may be nil.
type Input struct {
	Block  *BlockNode
	Shadow *BlockNode
}

// Position is a point in document space.
type Position struct {
	X float64
	Y float64
}

// Add returns p shifted by (dx, dy).
func (p Position) Add(dx, dy float64) Position {
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// SymbolRef is a reference from a field to a symbol table entry. An empty
// Type means the payload carried no declared type.
type SymbolRef struct {
	Name string
	Type string
}

// Field holds either a literal value or a symbol reference, never both.
// Whether a literal is constrained or free-form is decided by the
// destination schema, not by the field itself.
type Field struct {
	Value  any
	Symbol *SymbolRef
}

// Literal returns a literal field holding v.
func Literal(v any) Field {
	return Field{Value: v}
}

// Ref returns a symbol reference field.
func Ref(name, symbolType string) Field {
	return Field{Symbol: &SymbolRef{Name: name, Type: symbolType}}
}

// IsSymbol reports whether the field references a symbol.
func (f Field) IsSymbol() bool {
	return f.Symbol != nil
}

// IsBlank reports whether the field carries nothing a destination could
// use: a nil literal or an empty collection. Empty strings are values.
func (f Field) IsBlank() bool {
	if f.Symbol != nil {
		return false
	}
	switch v := f.Value.(type) {
	case nil:
		return true
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

// SetField sets a field, allocating the map when needed.
func (n *BlockNode) SetField(name string, f Field) {
	if n.Fields == nil {
		n.Fields = make(map[string]Field)
	}
	n.Fields[name] = f
}

// SetInput plugs child and shadow into the named slot. Passing nil for
// both removes the slot.
func (n *BlockNode) SetInput(slot string, child, shadow *BlockNode) {
	if child == nil && shadow == nil {
		delete(n.Inputs, slot)
		return
	}
	if n.Inputs == nil {
		n.Inputs = make(map[string]*Input)
	}
	n.Inputs[slot] = &Input{Block: child, Shadow: shadow}
}

// Payload is the portable form of one or more subtrees, in selection order.
type Payload struct {
	Blocks []*BlockNode
}
