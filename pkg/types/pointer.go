package types

import "sync"

// Point is a position in screen coordinates.
type Point struct {
	X float64
	Y float64
}

// Viewport describes the visible part of a document at read time.
type Viewport struct {
	Left    float64 // Screen X of the viewport's left edge.
	Top     float64 // Screen Y of the viewport's top edge.
	OffsetX float64 // Document X shown at the left edge (pan/scroll).
	OffsetY float64 // Document Y shown at the top edge.
	Scale   float64 // Zoom; must be positive.
}

// PointerState is the most recent pointer position observed by the host.
// Hosts update it from their pointer-move handler; paste reads it once.
type PointerState struct {
	mu   sync.Mutex
	pos  Point
	seen bool
}

// Move records a pointer-move notification.
func (p *PointerState) Move(x, y float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pos = Point{X: x, Y: y}
	p.seen = true
}

// Snapshot returns the last recorded position and whether any move has
// been recorded at all.
func (p *PointerState) Snapshot() (Point, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pos, p.seen
}
