// Package walk traverses block trees depth first.
//
// Order is pre-order: a node is handed to the callback before its
// descendants. Per node the walker visits, for each occupied input slot in
// lexical slot order, the slot's child and then its shadow, and finally
// the node's Next link. Cyclic trees are a caller error.
package walk

import (
	"errors"
	"sort"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// SkipChildren may be returned by a VisitErr callback to skip the inputs
// of the current node. Its Next link is still visited.
var SkipChildren = errors.New("skip children")

// Visit applies fn to every node reachable from root. A nil root is a
// no-op. fn may rewrite the node it is given; the walker reads Inputs and
// Next after fn returns so replaced children are the ones descended into.
func Visit(root *types.BlockNode, fn func(*types.BlockNode)) {
	_ = VisitErr(root, func(n *types.BlockNode) error {
		fn(n)
		return nil
	})
}

// VisitErr is Visit with a callback that can abort the walk. The first
// non-nil error other than SkipChildren stops the traversal and is
// returned.
func VisitErr(root *types.BlockNode, fn func(*types.BlockNode) error) error {
	for n := root; n != nil; n = n.Next {
		err := fn(n)
		if err != nil && !errors.Is(err, SkipChildren) {
			return err
		}
		if err == nil {
			if err := visitInputs(n, fn); err != nil {
				return err
			}
		}
	}
	return nil
}

// visitInputs descends into every occupied slot of n. The Next chain is
// iterated by the caller so long statement sequences do not grow the
// stack.
func visitInputs(n *types.BlockNode, fn func(*types.BlockNode) error) error {
	for _, slot := range Slots(n) {
		in := n.Inputs[slot]
		if in == nil {
			continue
		}
		// Read both ends before descending; fn on the child may not touch
		// this node's slot map, but it may replace the shadow's fields.
		child, shadow := in.Block, in.Shadow
		if err := VisitErr(child, fn); err != nil {
			return err
		}
		if err := VisitErr(shadow, fn); err != nil {
			return err
		}
	}
	return nil
}

// Slots returns the input slot names of n in lexical order.
func Slots(n *types.BlockNode) []string {
	if n == nil || len(n.Inputs) == 0 {
		return nil
	}
	slots := make([]string, 0, len(n.Inputs))
	for name := range n.Inputs {
		slots = append(slots, name)
	}
	sort.Strings(slots)
	return slots
}

// Count returns the number of nodes reachable from root.
func Count(root *types.BlockNode) int {
	n := 0
	Visit(root, func(*types.BlockNode) { n++ })
	return n
}
