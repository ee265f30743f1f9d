// Package extract captures bounded subtrees of a live document as
// self-contained payload trees.
//
// A subtree is a node plus everything reachable through its inputs. The
// root's Next link is never captured: copying one node must not drag along
// the nodes stacked after it. Chains that live inside an input (statement
// bodies) belong to that input and are captured.
package extract

import (
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Option configures Subtree.
type Option func(*options)

type options struct {
	position *types.Position
}

// WithPosition records pos as the paste origin of the extracted root.
func WithPosition(pos types.Position) Option {
	return func(o *options) {
		o.position = &pos
	}
}

// Subtree returns a deep copy of node and everything under its inputs,
// without node's Next. Host IDs are dropped. The source is not modified.
// A nil node yields nil.
func Subtree(node *types.BlockNode, opts ...Option) *types.BlockNode {
	if node == nil {
		return nil
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	out := cloneNode(node)
	out.Next = nil
	if o.position != nil {
		p := *o.position
		out.Position = &p
	}
	return out
}

// Selection extracts every node of an ordered multi-selection into one
// payload. Each root keeps its own live Position, so the pasted roots keep
// their relative layout; Next is cut from every root. Nil entries and
// nodes already captured inside an earlier selected root are skipped.
func Selection(nodes []*types.BlockNode) *types.Payload {
	p := &types.Payload{}
	owned := make(map[*types.BlockNode]bool)
	for _, n := range nodes {
		if n == nil || owned[n] {
			continue
		}
		markOwned(n, owned)
		var opts []Option
		if n.Position != nil {
			opts = append(opts, WithPosition(*n.Position))
		}
		p.Blocks = append(p.Blocks, Subtree(n, opts...))
	}
	return p
}

// markOwned records n and everything under its inputs.
func markOwned(n *types.BlockNode, owned map[*types.BlockNode]bool) {
	owned[n] = true
	for _, in := range n.Inputs {
		if in == nil {
			continue
		}
		for _, c := range []*types.BlockNode{in.Block, in.Shadow} {
			for ; c != nil; c = c.Next {
				markOwned(c, owned)
			}
		}
	}
}

// cloneNode deep-copies n including its Next chain. Positions are kept
// only by the caller; nested nodes never carry one.
func cloneNode(n *types.BlockNode) *types.BlockNode {
	if n == nil {
		return nil
	}
	out := &types.BlockNode{Kind: n.Kind}
	for name, f := range n.Fields {
		out.SetField(name, cloneField(f))
	}
	for slot, in := range n.Inputs {
		if in == nil {
			continue
		}
		out.SetInput(slot, cloneNode(in.Block), cloneNode(in.Shadow))
	}
	out.Next = cloneNode(n.Next)
	return out
}

func cloneField(f types.Field) types.Field {
	if f.Symbol != nil {
		ref := *f.Symbol
		return types.Field{Symbol: &ref}
	}
	return types.Field{Value: cloneValue(f.Value)}
}

// cloneValue copies the collection shapes a literal can take after JSON
// decoding; scalars are immutable.
func cloneValue(v any) any {
	switch tv := v.(type) {
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), tv...)
	case map[string]any:
		out := make(map[string]any, len(tv))
		for k, e := range tv {
			out[k] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
