package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

func stack() *types.BlockNode {
	body := &types.BlockNode{ID: "b1", Kind: "print", Next: &types.BlockNode{ID: "b2", Kind: "print"}}
	root := &types.BlockNode{ID: "r", Kind: "controls_repeat", Position: &types.Position{X: 5, Y: 6}}
	root.SetField("TIMES", types.Literal(float64(3)))
	root.SetField("VAR", types.Ref("i", "number"))
	root.SetInput("DO", body, nil)
	root.SetInput("COND", nil, &types.BlockNode{ID: "s", Kind: "logic_boolean"})
	root.Next = &types.BlockNode{ID: "after1", Kind: "print", Next: &types.BlockNode{ID: "after2", Kind: "print"}}
	return root
}

func TestSubtreeCutsNext(t *testing.T) {
	src := stack()
	got := Subtree(src)
	require.NotNil(t, got)
	assert.Nil(t, got.Next, "the sibling chain after the root is never captured")
	assert.Equal(t, 4, walk.Count(got), "root, two body nodes and the shadow")
}

func TestSubtreeCutsNextForEveryShape(t *testing.T) {
	shapes := []*types.BlockNode{
		{Kind: "lone", Next: &types.BlockNode{Kind: "n"}},
		stack(),
		{Kind: "shadow_only", Inputs: map[string]*types.Input{"A": {Shadow: &types.BlockNode{Kind: "s"}}}, Next: &types.BlockNode{Kind: "n"}},
	}
	for _, s := range shapes {
		got := Subtree(s)
		assert.Nil(t, got.Next, "kind %s", s.Kind)
	}
}

func TestSubtreeKeepsStatementBodies(t *testing.T) {
	got := Subtree(stack())
	body := got.Inputs["DO"].Block
	require.NotNil(t, body.Next)
	assert.Equal(t, "print", body.Next.Kind)
	assert.Equal(t, "logic_boolean", got.Inputs["COND"].Shadow.Kind)
}

func TestSubtreeLeavesSourceUntouched(t *testing.T) {
	src := stack()
	got := Subtree(src, WithPosition(types.Position{X: 100, Y: 200}))

	got.Fields["VAR"].Symbol.Name = "renamed"
	got.Inputs["DO"].Block.Kind = "changed"

	assert.Equal(t, "i", src.Fields["VAR"].Symbol.Name)
	assert.Equal(t, "print", src.Inputs["DO"].Block.Kind)
	require.NotNil(t, src.Next, "source keeps its sibling chain")
	assert.Equal(t, types.Position{X: 5, Y: 6}, *src.Position)
	assert.Equal(t, types.Position{X: 100, Y: 200}, *got.Position)
}

func TestSubtreeDropsHostIDs(t *testing.T) {
	got := Subtree(stack())
	walk.Visit(got, func(n *types.BlockNode) {
		assert.Empty(t, n.ID, "kind %s", n.Kind)
	})
}

func TestSubtreeWithoutPositionOption(t *testing.T) {
	got := Subtree(stack())
	assert.Nil(t, got.Position)
	assert.Nil(t, Subtree(nil))
}

func TestSubtreeCopiesCollections(t *testing.T) {
	src := &types.BlockNode{Kind: "list"}
	src.SetField("ITEMS", types.Literal([]any{"a", map[string]any{"k": "v"}}))
	got := Subtree(src)
	got.Fields["ITEMS"].Value.([]any)[1].(map[string]any)["k"] = "changed"
	assert.Equal(t, "v", src.Fields["ITEMS"].Value.([]any)[1].(map[string]any)["k"])
}

func TestSelection(t *testing.T) {
	a := &types.BlockNode{Kind: "a", Position: &types.Position{X: 10, Y: 10}, Next: &types.BlockNode{Kind: "a_next"}}
	b := &types.BlockNode{Kind: "b", Position: &types.Position{X: 40, Y: 10}}
	inner := &types.BlockNode{Kind: "inner"}
	a.SetInput("X", inner, nil)

	p := Selection([]*types.BlockNode{a, nil, b, inner})
	require.Len(t, p.Blocks, 2, "nil and already-owned nodes are skipped")
	assert.Equal(t, "a", p.Blocks[0].Kind)
	assert.Nil(t, p.Blocks[0].Next)
	assert.Equal(t, types.Position{X: 10, Y: 10}, *p.Blocks[0].Position)
	assert.Equal(t, types.Position{X: 40, Y: 10}, *p.Blocks[1].Position)
}
