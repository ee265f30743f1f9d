// Package codec converts payloads to and from their portable clipboard
// text.
//
// A payload holding one subtree is written as a bare node object. A payload
// holding several subtrees is written as an envelope:
//
//	{"format": "blockclip/v1", "blocks": [ {...}, {...} ]}
//
// Decode accepts both shapes and also a bare JSON array of nodes. Symbol
// reference fields are resolved into types.SymbolRef here, once, so later
// stages never inspect raw field shapes.
package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Format identifies the envelope written for multi-subtree payloads.
const Format = "blockclip/v1"

type wireEnvelope struct {
	Format string      `json:"format"`
	Blocks []*wireNode `json:"blocks"`
}

type wireNode struct {
	Kind     string                     `json:"kind"`
	Fields   map[string]json.RawMessage `json:"fields,omitempty"`
	Inputs   map[string]*wireInput      `json:"inputs,omitempty"`
	Next     *wireNode                  `json:"next,omitempty"`
	Position *wirePosition              `json:"position,omitempty"`
}

type wireInput struct {
	Block  *wireNode `json:"block,omitempty"`
	Shadow *wireNode `json:"shadow,omitempty"`
}

type wirePosition struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type wireSymbol struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
}

// Encode renders p as UTF-8 JSON text.
func Encode(p *types.Payload) (string, error) {
	if p == nil || len(p.Blocks) == 0 {
		return "", errors.New("encode: payload has no blocks")
	}
	var v any
	if len(p.Blocks) == 1 {
		n, err := toWire(p.Blocks[0])
		if err != nil {
			return "", err
		}
		v = n
	} else {
		env := wireEnvelope{Format: Format, Blocks: make([]*wireNode, 0, len(p.Blocks))}
		for _, b := range p.Blocks {
			n, err := toWire(b)
			if err != nil {
				return "", err
			}
			env.Blocks = append(env.Blocks, n)
		}
		v = env
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", fmt.Errorf("encode: %w", err)
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// UnmarkedSymbolError reports a symbol reference held by a field whose
// name Decode would not read as a reference. Encoding it would turn the
// reference into a literal on paste.
type UnmarkedSymbolError struct {
	Kind  string
	Field string
}

func (e *UnmarkedSymbolError) Error() string {
	return fmt.Sprintf("encode %s.%s: symbol reference in a field not named as a symbol field", e.Kind, e.Field)
}

// marshalRaw is json.Marshal without HTML escaping, so field text
// survives into the clipboard as written.
func marshalRaw(v any) (json.RawMessage, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func toWire(n *types.BlockNode) (*wireNode, error) {
	if n == nil {
		return nil, nil
	}
	if n.Kind == "" {
		return nil, fmt.Errorf("encode: %w", types.ErrInvalidKind)
	}
	w := &wireNode{Kind: n.Kind}
	if len(n.Fields) > 0 {
		w.Fields = make(map[string]json.RawMessage, len(n.Fields))
		for name, f := range n.Fields {
			var raw []byte
			var err error
			if f.Symbol != nil {
				if !IsSymbolField(name) {
					return nil, &UnmarkedSymbolError{Kind: n.Kind, Field: name}
				}
				raw, err = marshalRaw(wireSymbol{Name: f.Symbol.Name, Type: f.Symbol.Type})
			} else {
				raw, err = marshalRaw(f.Value)
			}
			if err != nil {
				return nil, fmt.Errorf("encode %s.%s: %w", n.Kind, name, err)
			}
			w.Fields[name] = raw
		}
	}
	for slot, in := range n.Inputs {
		if in == nil || (in.Block == nil && in.Shadow == nil) {
			continue
		}
		block, err := toWire(in.Block)
		if err != nil {
			return nil, err
		}
		shadow, err := toWire(in.Shadow)
		if err != nil {
			return nil, err
		}
		if w.Inputs == nil {
			w.Inputs = make(map[string]*wireInput)
		}
		w.Inputs[slot] = &wireInput{Block: block, Shadow: shadow}
	}
	next, err := toWire(n.Next)
	if err != nil {
		return nil, err
	}
	w.Next = next
	if n.Position != nil {
		w.Position = &wirePosition{X: n.Position.X, Y: n.Position.Y}
	}
	return w, nil
}

// Decode parses clipboard text. Text that is not a payload, including text
// copied from unrelated applications, returns a *types.MalformedPayloadError.
// Blank text is reported as types.ErrEmptyClipboard.
func Decode(text string) (*types.Payload, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, types.ErrEmptyClipboard
	}
	if !utf8.ValidString(trimmed) {
		return nil, &types.MalformedPayloadError{Msg: "text is not valid UTF-8"}
	}

	var nodes []*wireNode
	switch trimmed[0] {
	case '[':
		if err := strictUnmarshal(trimmed, &nodes); err != nil {
			return nil, &types.MalformedPayloadError{Msg: "invalid block array", Err: err}
		}
	case '{':
		var probe map[string]json.RawMessage
		if err := strictUnmarshal(trimmed, &probe); err != nil {
			return nil, &types.MalformedPayloadError{Msg: "invalid JSON object", Err: err}
		}
		if _, ok := probe["blocks"]; ok {
			var env wireEnvelope
			if err := json.Unmarshal([]byte(trimmed), &env); err != nil {
				return nil, &types.MalformedPayloadError{Msg: "invalid envelope", Err: err}
			}
			nodes = env.Blocks
		} else {
			var n wireNode
			if err := json.Unmarshal([]byte(trimmed), &n); err != nil {
				return nil, &types.MalformedPayloadError{Msg: "invalid block", Err: err}
			}
			nodes = []*wireNode{&n}
		}
	default:
		return nil, &types.MalformedPayloadError{Msg: "text is not a JSON object or array"}
	}

	if len(nodes) == 0 {
		return nil, &types.MalformedPayloadError{Msg: "payload has no blocks"}
	}
	p := &types.Payload{Blocks: make([]*types.BlockNode, 0, len(nodes))}
	for i, w := range nodes {
		if w == nil {
			return nil, &types.MalformedPayloadError{Msg: fmt.Sprintf("block %d is null", i)}
		}
		n, err := fromWire(w, fmt.Sprintf("blocks[%d]", i))
		if err != nil {
			return nil, err
		}
		p.Blocks = append(p.Blocks, n)
	}
	return p, nil
}

// strictUnmarshal decodes s into v and rejects trailing content.
func strictUnmarshal(s string, v any) error {
	dec := json.NewDecoder(strings.NewReader(s))
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON value")
	}
	return nil
}

func fromWire(w *wireNode, path string) (*types.BlockNode, error) {
	if w.Kind == "" {
		return nil, &types.MalformedPayloadError{Msg: path + ": missing kind"}
	}
	n := &types.BlockNode{Kind: w.Kind}
	for name, raw := range w.Fields {
		f, err := decodeField(name, raw)
		if err != nil {
			return nil, &types.MalformedPayloadError{Msg: fmt.Sprintf("%s: field %s", path, name), Err: err}
		}
		n.SetField(name, f)
	}
	for slot, in := range w.Inputs {
		if in == nil {
			continue
		}
		var child, shadow *types.BlockNode
		var err error
		if in.Block != nil {
			if child, err = fromWire(in.Block, path+".inputs."+slot); err != nil {
				return nil, err
			}
		}
		if in.Shadow != nil {
			if shadow, err = fromWire(in.Shadow, path+".inputs."+slot+".shadow"); err != nil {
				return nil, err
			}
		}
		n.SetInput(slot, child, shadow)
	}
	if w.Next != nil {
		next, err := fromWire(w.Next, path+".next")
		if err != nil {
			return nil, err
		}
		n.Next = next
	}
	if w.Position != nil {
		n.Position = &types.Position{X: w.Position.X, Y: w.Position.Y}
	}
	return n, nil
}

// decodeField resolves a raw field value. Symbol fields accept a plain
// name or an object carrying name and an optional type.
func decodeField(name string, raw json.RawMessage) (types.Field, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return types.Field{}, err
	}
	if !IsSymbolField(name) {
		return types.Literal(v), nil
	}
	switch sv := v.(type) {
	case string:
		return types.Ref(sv, ""), nil
	case map[string]any:
		var ws wireSymbol
		if err := json.Unmarshal(raw, &ws); err != nil {
			return types.Field{}, err
		}
		if ws.Name == "" {
			return types.Field{}, fmt.Errorf("symbol reference without name: %w", types.ErrInvalidName)
		}
		return types.Ref(ws.Name, ws.Type), nil
	default:
		// Not shaped like a reference; keep it as a literal.
		return types.Literal(v), nil
	}
}
