package walk

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// sampleTree builds:
//
//	root (controls_if)
//	  DO0   -> print_a -> print_b
//	  IF0   -> compare (shadow: logic_boolean)
//	             A -> num_1
//	  next  -> after
func sampleTree() *types.BlockNode {
	compare := &types.BlockNode{Kind: "compare"}
	compare.SetInput("A", &types.BlockNode{Kind: "num_1"}, nil)

	root := &types.BlockNode{Kind: "controls_if"}
	root.SetInput("IF0", compare, &types.BlockNode{Kind: "logic_boolean"})
	root.SetInput("DO0", &types.BlockNode{
		Kind: "print_a",
		Next: &types.BlockNode{Kind: "print_b"},
	}, nil)
	root.Next = &types.BlockNode{Kind: "after"}
	return root
}

func kinds(root *types.BlockNode) []string {
	var got []string
	Visit(root, func(n *types.BlockNode) { got = append(got, n.Kind) })
	return got
}

func TestVisitOrder(t *testing.T) {
	got := kinds(sampleTree())
	assert.Equal(t, []string{
		"controls_if",
		"print_a", "print_b", // DO0 sorts before IF0
		"compare", "num_1", "logic_boolean",
		"after",
	}, got)
}

func TestVisitNilRoot(t *testing.T) {
	called := false
	Visit(nil, func(*types.BlockNode) { called = true })
	assert.False(t, called)
	assert.Equal(t, 0, Count(nil))
}

func TestVisitHonorsReplacedChildren(t *testing.T) {
	root := &types.BlockNode{Kind: "outer"}
	root.SetInput("VALUE", &types.BlockNode{Kind: "old"}, nil)

	var got []string
	Visit(root, func(n *types.BlockNode) {
		got = append(got, n.Kind)
		if n.Kind == "outer" {
			n.SetInput("VALUE", &types.BlockNode{Kind: "new"}, nil)
		}
	})
	assert.Equal(t, []string{"outer", "new"}, got)
}

func TestVisitCallbackMutatesFields(t *testing.T) {
	root := sampleTree()
	Visit(root, func(n *types.BlockNode) {
		n.SetField("SEEN", types.Literal(true))
	})
	Visit(root, func(n *types.BlockNode) {
		assert.Equal(t, true, n.Fields["SEEN"].Value, "node %s", n.Kind)
	})
}

func TestVisitErrStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	var got []string
	err := VisitErr(sampleTree(), func(n *types.BlockNode) error {
		got = append(got, n.Kind)
		if n.Kind == "print_b" {
			return boom
		}
		return nil
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"controls_if", "print_a", "print_b"}, got)
}

func TestVisitErrSkipChildren(t *testing.T) {
	var got []string
	err := VisitErr(sampleTree(), func(n *types.BlockNode) error {
		got = append(got, n.Kind)
		if n.Kind == "controls_if" {
			return SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"controls_if", "after"}, got)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 7, Count(sampleTree()))
}
