package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

func TestSymbols(t *testing.T) {
	d := NewDocument()
	s, err := d.CreateSymbol("Score", "number")
	require.NoError(t, err)
	assert.NotEmpty(t, s.SymbolID)

	_, err = d.CreateSymbol("Score", "string")
	assert.ErrorIs(t, err, types.ErrDuplicateName)
	_, err = d.CreateSymbol("", "string")
	assert.ErrorIs(t, err, types.ErrInvalidName)

	got, err := d.LookupSymbol("Score")
	require.NoError(t, err)
	assert.Equal(t, "number", got.Type)

	require.NoError(t, d.DeleteSymbol("Score"))
	_, err = d.LookupSymbol("Score")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.ErrorIs(t, d.DeleteSymbol("Score"), types.ErrNotFound)
}

func TestProbeLifecycle(t *testing.T) {
	d := NewDocument()
	d.SetOptions("dropdown", "MODE", "A", "B")
	d.SetOptions("dropdown", "EMPTY")

	p, err := d.Probe("dropdown")
	require.NoError(t, err)
	assert.Equal(t, 1, d.OpenProbes())

	opts, constrained, err := p.Options("MODE")
	require.NoError(t, err)
	assert.True(t, constrained)
	assert.Equal(t, []string{"A", "B"}, opts)

	opts, constrained, err = p.Options("EMPTY")
	require.NoError(t, err)
	assert.True(t, constrained)
	assert.Empty(t, opts)

	_, constrained, err = p.Options("TEXT")
	require.NoError(t, err)
	assert.False(t, constrained)

	require.NoError(t, p.Release())
	require.NoError(t, p.Release(), "release is idempotent")
	assert.Equal(t, 0, d.OpenProbes())

	_, err = d.Probe("")
	assert.ErrorIs(t, err, types.ErrInvalidKind)
}

func TestMergeSubtreeDefaultCheck(t *testing.T) {
	ctx := context.Background()
	d := NewDocument()

	bad := &types.BlockNode{Kind: "x"}
	bad.SetField("EMPTY", types.Literal([]any{}))
	_, err := d.MergeSubtree(ctx, bad, types.Position{})
	assert.ErrorIs(t, err, types.ErrSchemaRejection)

	ref := &types.BlockNode{Kind: "getVariable"}
	ref.SetField("VAR", types.Ref("missing", ""))
	_, err = d.MergeSubtree(ctx, ref, types.Position{})
	assert.ErrorIs(t, err, types.ErrSchemaRejection)

	ok := &types.BlockNode{Kind: "print"}
	ok.SetInput("TEXT", &types.BlockNode{Kind: "text"}, nil)
	id, err := d.MergeSubtree(ctx, ok, types.Position{X: 3, Y: 4})
	require.NoError(t, err)

	roots := d.Roots()
	require.Len(t, roots, 1)
	assert.Equal(t, id, roots[0].ID)
	assert.Equal(t, types.Position{X: 3, Y: 4}, *roots[0].Position)
	assert.NotEmpty(t, roots[0].Inputs["TEXT"].Block.ID)
	assert.Empty(t, ok.ID, "caller's node is not modified")

	require.NoError(t, d.RemoveSubtree(ctx, id))
	assert.Empty(t, d.Roots())
	assert.ErrorIs(t, d.RemoveSubtree(ctx, id), types.ErrNotFound)
}

func TestMergeAllIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	d := NewDocument()

	good := &types.BlockNode{Kind: "getVariable", Position: &types.Position{X: 1, Y: 1}}
	good.SetField("VAR", types.Ref("fresh", "number"))
	bad := &types.BlockNode{Kind: "x", Position: &types.Position{}}
	bad.SetField("NULL", types.Literal(nil))

	_, err := d.MergeAll(ctx, []types.Symbol{{Name: "fresh", Type: "number"}}, []*types.BlockNode{good, bad})
	require.ErrorIs(t, err, types.ErrSchemaRejection)
	assert.Empty(t, d.Roots())
	assert.Empty(t, d.Symbols())

	ids, err := d.MergeAll(ctx, []types.Symbol{{Name: "fresh", Type: "number"}}, []*types.BlockNode{good})
	require.NoError(t, err)
	assert.Len(t, ids, 1)
	assert.Len(t, d.Symbols(), 1)
}

func TestAddAndBlock(t *testing.T) {
	d := NewDocument()
	inner := &types.BlockNode{Kind: "inner"}
	root := &types.BlockNode{Kind: "outer", Next: &types.BlockNode{Kind: "after"}}
	root.SetInput("X", inner, nil)
	id := d.Add(root)

	got, err := d.Block(inner.ID)
	require.NoError(t, err)
	assert.Same(t, inner, got)

	got, err = d.Block(id)
	require.NoError(t, err)
	assert.NotNil(t, got.Next, "live documents keep sibling chains")

	_, err = d.Block("nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
