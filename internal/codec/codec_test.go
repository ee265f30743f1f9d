package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

func TestDecodeSingleNode(t *testing.T) {
	text := `{
	  "kind": "setVariable",
	  "fields": {"VAR": {"name": "Score", "type": "number"}, "MODE": "Legacy"},
	  "inputs": {"VALUE": {"block": {"kind": "math_number", "fields": {"NUM": 3}},
	                       "shadow": {"kind": "math_number", "fields": {"NUM": 0}}}},
	  "position": {"x": 10, "y": 20}
	}`
	p, err := Decode(text)
	require.NoError(t, err)
	require.Len(t, p.Blocks, 1)

	root := p.Blocks[0]
	assert.Equal(t, "setVariable", root.Kind)
	require.True(t, root.Fields["VAR"].IsSymbol())
	assert.Equal(t, types.SymbolRef{Name: "Score", Type: "number"}, *root.Fields["VAR"].Symbol)
	assert.Equal(t, "Legacy", root.Fields["MODE"].Value)
	require.NotNil(t, root.Position)
	assert.Equal(t, types.Position{X: 10, Y: 20}, *root.Position)

	in := root.Inputs["VALUE"]
	require.NotNil(t, in)
	assert.Equal(t, float64(3), in.Block.Fields["NUM"].Value)
	assert.Equal(t, float64(0), in.Shadow.Fields["NUM"].Value)
}

func TestDecodePlainSymbolName(t *testing.T) {
	p, err := Decode(`{"kind": "getVariable", "fields": {"VAR": "Score"}}`)
	require.NoError(t, err)
	f := p.Blocks[0].Fields["VAR"]
	require.True(t, f.IsSymbol())
	assert.Equal(t, "Score", f.Symbol.Name)
	assert.Empty(t, f.Symbol.Type, "plain names carry no declared type")
}

func TestDecodeCollections(t *testing.T) {
	envelope := `{"format": "blockclip/v1", "blocks": [{"kind": "a"}, {"kind": "b"}]}`
	p, err := Decode(envelope)
	require.NoError(t, err)
	require.Len(t, p.Blocks, 2)
	assert.Equal(t, "a", p.Blocks[0].Kind)
	assert.Equal(t, "b", p.Blocks[1].Kind)

	p, err = Decode(`[{"kind": "x"}, {"kind": "y"}, {"kind": "z"}]`)
	require.NoError(t, err)
	assert.Len(t, p.Blocks, 3)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", types.ErrEmptyClipboard},
		{"whitespace", " \n\t ", types.ErrEmptyClipboard},
		{"plain prose", "hello from another app", types.ErrMalformedPayload},
		{"xml", `<xml><block type="x"/></xml>`, types.ErrMalformedPayload},
		{"truncated", `{"kind": "a", "fields": {`, types.ErrMalformedPayload},
		{"missing root kind", `{"fields": {"A": 1}}`, types.ErrMalformedPayload},
		{"kind wrong type", `{"kind": 5}`, types.ErrMalformedPayload},
		{"missing nested kind", `{"kind": "a", "inputs": {"X": {"block": {}}}}`, types.ErrMalformedPayload},
		{"empty envelope", `{"blocks": []}`, types.ErrMalformedPayload},
		{"null in array", `[null]`, types.ErrMalformedPayload},
		{"trailing data", `{"kind": "a"} {"kind": "b"}`, types.ErrMalformedPayload},
		{"nameless symbol", `{"kind": "a", "fields": {"VAR": {"type": "number"}}}`, types.ErrMalformedPayload},
		{"number", `42`, types.ErrMalformedPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.text)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestEncodeDecodeKeepsStructure(t *testing.T) {
	root := &types.BlockNode{Kind: "controls_repeat", Position: &types.Position{X: 1.5, Y: -2}}
	root.SetField("TIMES", types.Literal(float64(4)))
	body := &types.BlockNode{Kind: "setVariable", Next: &types.BlockNode{Kind: "print"}}
	body.SetField("VAR", types.Ref("Score", "number"))
	root.SetInput("DO", body, nil)

	text, err := Encode(&types.Payload{Blocks: []*types.BlockNode{root}})
	require.NoError(t, err)
	assert.NotContains(t, text, "blocks", "single subtree is written as a bare node")

	p, err := Decode(text)
	require.NoError(t, err)
	got := p.Blocks[0]
	assert.Equal(t, "controls_repeat", got.Kind)
	assert.Equal(t, types.Position{X: 1.5, Y: -2}, *got.Position)
	gotBody := got.Inputs["DO"].Block
	assert.Equal(t, types.SymbolRef{Name: "Score", Type: "number"}, *gotBody.Fields["VAR"].Symbol)
	require.NotNil(t, gotBody.Next, "statement body chains inside an input are kept")
	assert.Equal(t, "print", gotBody.Next.Kind)
}

func TestEncodeMultipleUsesEnvelope(t *testing.T) {
	text, err := Encode(&types.Payload{Blocks: []*types.BlockNode{{Kind: "a"}, {Kind: "b"}}})
	require.NoError(t, err)
	assert.Contains(t, text, `"format":"blockclip/v1"`)
}

func TestEncodeRejectsBadPayloads(t *testing.T) {
	_, err := Encode(nil)
	assert.Error(t, err)
	_, err = Encode(&types.Payload{})
	assert.Error(t, err)
	_, err = Encode(&types.Payload{Blocks: []*types.BlockNode{{Kind: ""}}})
	assert.ErrorIs(t, err, types.ErrInvalidKind)
}

func TestEncodeKeepsNonASCII(t *testing.T) {
	root := &types.BlockNode{Kind: "text"}
	root.SetField("TEXT", types.Literal("héllo <wörld> 🎮"))
	text, err := Encode(&types.Payload{Blocks: []*types.BlockNode{root}})
	require.NoError(t, err)
	assert.Contains(t, text, "héllo <wörld> 🎮")

	p, err := Decode(text)
	require.NoError(t, err)
	assert.Equal(t, "héllo <wörld> 🎮", p.Blocks[0].Fields["TEXT"].Value)
}

func TestEncodeDoesNotEscapeHTML(t *testing.T) {
	root := &types.BlockNode{Kind: "set"}
	root.SetField("VAR", types.Ref("a<b>&c", "list<int>"))
	root.SetField("HTML", types.Literal(map[string]any{"tag": "<b>"}))
	text, err := Encode(&types.Payload{Blocks: []*types.BlockNode{root}})
	require.NoError(t, err)
	assert.NotContains(t, text, `\u003c`)
	assert.Contains(t, text, `"a<b>&c"`)
	assert.Contains(t, text, `"<b>"`)
}

func TestEncodeRejectsReferenceInUnmarkedField(t *testing.T) {
	root := &types.BlockNode{Kind: "call"}
	root.SetField("TARGET", types.Ref("fn", "proc"))
	_, err := Encode(&types.Payload{Blocks: []*types.BlockNode{root}})
	var uerr *UnmarkedSymbolError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "call", uerr.Kind)
	assert.Equal(t, "TARGET", uerr.Field)
}

func TestIsSymbolField(t *testing.T) {
	tests := map[string]bool{
		"VAR":       true,
		"var":       true,
		"VARIABLE":  true,
		"LIST_VAR":  true,
		"SYMBOL":    true,
		"VARIANCE":  false,
		"AVATAR":    false,
		"NUM":       false,
		"":          false,
		"TEXT_BODY": false,
	}
	for name, want := range tests {
		assert.Equal(t, want, IsSymbolField(name), "IsSymbolField(%q)", name)
	}
}
