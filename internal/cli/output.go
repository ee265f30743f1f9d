// Output helpers shared by the commands.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return sysErr(fmt.Errorf("marshal JSON: %w", err))
	}
	return nil
}

// nodeView is the --json form of a stored node. Unlike the clipboard
// form it carries host IDs.
type nodeView struct {
	ID       string                `json:"id"`
	Kind     string                `json:"kind"`
	Fields   map[string]any        `json:"fields,omitempty"`
	Inputs   map[string]*inputView `json:"inputs,omitempty"`
	Next     *nodeView             `json:"next,omitempty"`
	Position *types.Position       `json:"position,omitempty"`
}

type inputView struct {
	Block  *nodeView `json:"block,omitempty"`
	Shadow *nodeView `json:"shadow,omitempty"`
}

func viewOf(n *types.BlockNode) *nodeView {
	if n == nil {
		return nil
	}
	v := &nodeView{ID: n.ID, Kind: n.Kind, Position: n.Position, Next: viewOf(n.Next)}
	for name, f := range n.Fields {
		if v.Fields == nil {
			v.Fields = make(map[string]any, len(n.Fields))
		}
		if f.Symbol != nil {
			v.Fields[name] = map[string]string{"name": f.Symbol.Name, "type": f.Symbol.Type}
		} else {
			v.Fields[name] = f.Value
		}
	}
	for slot, in := range n.Inputs {
		if in == nil {
			continue
		}
		if v.Inputs == nil {
			v.Inputs = make(map[string]*inputView, len(n.Inputs))
		}
		v.Inputs[slot] = &inputView{Block: viewOf(in.Block), Shadow: viewOf(in.Shadow)}
	}
	return v
}

// summary is a one-line description of a node: kind and fields.
func summary(n *types.BlockNode) string {
	var b strings.Builder
	b.WriteString(n.Kind)
	names := make([]string, 0, len(n.Fields))
	for name := range n.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := n.Fields[name]
		if f.Symbol != nil {
			fmt.Fprintf(&b, " %s=$%s", name, f.Symbol.Name)
			if f.Symbol.Type != "" {
				fmt.Fprintf(&b, ":%s", f.Symbol.Type)
			}
			continue
		}
		if s, ok := f.Value.(string); ok {
			fmt.Fprintf(&b, " %s=%q", name, s)
			continue
		}
		fmt.Fprintf(&b, " %s=%v", name, f.Value)
	}
	return b.String()
}

// printTree writes n and everything under it as an indented outline.
func printTree(w io.Writer, n *types.BlockNode, indent, label string) {
	for ; n != nil; n = n.Next {
		line := indent + label + summary(n)
		if n.ID != "" {
			line += "  [" + n.ID + "]"
		}
		if n.Position != nil {
			line += fmt.Sprintf("  @(%g, %g)", n.Position.X, n.Position.Y)
		}
		fmt.Fprintln(w, line)
		for _, slot := range walk.Slots(n) {
			in := n.Inputs[slot]
			if in == nil {
				continue
			}
			if in.Block != nil {
				printTree(w, in.Block, indent+"  ", slot+": ")
			}
			if in.Shadow != nil {
				printTree(w, in.Shadow, indent+"  ", slot+" (shadow): ")
			}
		}
		label = ""
	}
}
