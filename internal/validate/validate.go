// Package validate checks constrained literal fields of a pasted subtree
// against the destination's live option sets.
//
// Options are read through a transient types.FieldProbe that is released
// before every function here returns, on success and on failure, so
// validation leaves no state behind in the destination.
package validate

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Outcome is the result of validating one field.
type Outcome struct {
	// Field is the value to use: the input unchanged, or a replacement.
	Field types.Field

	// Replaced reports that Field differs from the input.
	Replaced bool

	// Degraded reports that the field is constrained to an empty option
	// set, so the replacement is an empty value rather than a valid one.
	// Callers should surface it as a warning.
	Degraded bool
}

// Change describes one field rewritten by ValidateTree.
type Change struct {
	Kind     string
	Field    string
	From     any
	To       any
	Degraded bool
}

// Report lists the changes ValidateTree made.
type Report struct {
	Changes []Change
}

// Warnings returns the degraded changes.
func (r Report) Warnings() []Change {
	var out []Change
	for _, c := range r.Changes {
		if c.Degraded {
			out = append(out, c)
		}
	}
	return out
}

// ValidateField checks one field of a node of the given kind. Symbol
// references are returned untouched without consulting the schema.
// Free-form fields and members of their option set are returned untouched.
// A non-member is replaced by the first option, or by "" when the option
// set is empty (Degraded).
func ValidateField(schema types.Schema, kind, fieldName string, f types.Field) (out Outcome, err error) {
	if f.IsSymbol() {
		return Outcome{Field: f}, nil
	}
	probe, err := schema.Probe(kind)
	if err != nil {
		return Outcome{}, fmt.Errorf("probe %s: %w", kind, err)
	}
	defer func() {
		if rerr := probe.Release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("release probe %s: %w", kind, rerr))
		}
	}()
	return check(probe, fieldName, f)
}

// ValidateTree validates every literal field of every node under root in
// place, opening one probe per node.
func ValidateTree(schema types.Schema, root *types.BlockNode) (Report, error) {
	var report Report
	err := walk.VisitErr(root, func(n *types.BlockNode) error {
		changes, err := validateNode(schema, n)
		report.Changes = append(report.Changes, changes...)
		return err
	})
	for _, c := range report.Warnings() {
		logger.Warn("field %s.%s has no valid options; pasted with an empty value", c.Kind, c.Field)
	}
	return report, err
}

func validateNode(schema types.Schema, n *types.BlockNode) (changes []Change, err error) {
	names := literalFieldNames(n)
	if len(names) == 0 {
		return nil, nil
	}
	probe, err := schema.Probe(n.Kind)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", n.Kind, err)
	}
	defer func() {
		if rerr := probe.Release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("release probe %s: %w", n.Kind, rerr))
		}
	}()

	for _, name := range names {
		f := n.Fields[name]
		out, err := check(probe, name, f)
		if err != nil {
			return changes, fmt.Errorf("validate %s.%s: %w", n.Kind, name, err)
		}
		// A degraded field is reported even when its value is already empty.
		if !out.Replaced && !out.Degraded {
			continue
		}
		if out.Replaced {
			logger.Debug("field %s.%s replaced with a valid option", n.Kind, name)
			n.Fields[name] = out.Field
		}
		changes = append(changes, Change{
			Kind:     n.Kind,
			Field:    name,
			From:     f.Value,
			To:       out.Field.Value,
			Degraded: out.Degraded,
		})
	}
	return changes, nil
}

func check(probe types.FieldProbe, name string, f types.Field) (Outcome, error) {
	opts, constrained, err := probe.Options(name)
	if err != nil {
		return Outcome{}, err
	}
	if !constrained || member(f.Value, opts) {
		return Outcome{Field: f}, nil
	}
	if len(opts) == 0 {
		return Outcome{
			Field:    types.Literal(""),
			Replaced: f.Value != "",
			Degraded: true,
		}, nil
	}
	return Outcome{Field: types.Literal(opts[0]), Replaced: true}, nil
}

// member compares by string form; options are strings while decoded
// literals may be numbers or booleans.
func member(v any, opts []string) bool {
	if v == nil {
		return false
	}
	s, ok := v.(string)
	if !ok {
		s = fmt.Sprint(v)
	}
	for _, o := range opts {
		if o == s {
			return true
		}
	}
	return false
}

func literalFieldNames(n *types.BlockNode) []string {
	names := make([]string, 0, len(n.Fields))
	for name, f := range n.Fields {
		if !f.IsSymbol() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
