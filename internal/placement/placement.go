// Package placement maps pointer positions into document space and moves
// pasted roots to where the user pointed.
package placement

import (
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Mode selects how pasted roots are positioned.
type Mode string

const (
	// ModeRelative moves every root by the same offset so their layout is
	// preserved. It needs a recorded origin and falls back to ModeAbsolute
	// without one.
	ModeRelative Mode = types.PlacementRelative

	// ModeAbsolute puts every root at the target position.
	ModeAbsolute Mode = types.PlacementAbsolute
)

// ScreenToDocument converts a screen point to document coordinates:
// (screen - viewport edge) / scale + view offset on each axis.
func ScreenToDocument(p types.Point, v types.Viewport) (types.Position, error) {
	if v.Scale <= 0 {
		return types.Position{}, types.ErrInvalidViewport
	}
	return types.Position{
		X: (p.X-v.Left)/v.Scale + v.OffsetX,
		Y: (p.Y-v.Top)/v.Scale + v.OffsetY,
	}, nil
}

// DocumentToScreen is the inverse of ScreenToDocument.
func DocumentToScreen(p types.Position, v types.Viewport) (types.Point, error) {
	if v.Scale <= 0 {
		return types.Point{}, types.ErrInvalidViewport
	}
	return types.Point{
		X: (p.X-v.OffsetX)*v.Scale + v.Left,
		Y: (p.Y-v.OffsetY)*v.Scale + v.Top,
	}, nil
}

// Origin returns the recorded position of the first root that has one.
func Origin(roots []*types.BlockNode) (types.Position, bool) {
	for _, r := range roots {
		if r != nil && r.Position != nil {
			return *r.Position, true
		}
	}
	return types.Position{}, false
}

// Relative shifts every positioned root by target minus the origin. Roots
// without a recorded position are placed at target. It reports false and
// changes nothing when no root recorded a position.
func Relative(roots []*types.BlockNode, target types.Position) bool {
	origin, ok := Origin(roots)
	if !ok {
		return false
	}
	dx, dy := target.X-origin.X, target.Y-origin.Y
	for _, r := range roots {
		if r == nil {
			continue
		}
		if r.Position == nil {
			p := target
			r.Position = &p
			continue
		}
		p := r.Position.Add(dx, dy)
		r.Position = &p
	}
	return true
}

// Absolute places every root at target.
func Absolute(roots []*types.BlockNode, target types.Position) {
	for _, r := range roots {
		if r == nil {
			continue
		}
		p := target
		r.Position = &p
	}
}

// Place positions roots according to mode and returns the mode actually
// used.
func Place(roots []*types.BlockNode, target types.Position, mode Mode) Mode {
	if mode != ModeAbsolute && Relative(roots, target) {
		return ModeRelative
	}
	Absolute(roots, target)
	return ModeAbsolute
}
