// Package transfer sequences copy and paste between a host document and
// an external clipboard.
//
// Copy extracts the target subtree, encodes it and writes the text to the
// clipboard. Paste reads the clipboard, decodes the payload, reconciles
// its symbol references, validates its constrained fields, places it at
// the pointer and merges it into the destination. A paste that fails at
// any step leaves the destination's blocks and symbol table as they were.
//
// One Orchestrator runs one transfer at a time; a copy or paste started
// while another is pending fails with types.ErrTransferInProgress.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/mesh-intelligence/blockclip/internal/codec"
	"github.com/mesh-intelligence/blockclip/internal/extract"
	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/internal/placement"
	"github.com/mesh-intelligence/blockclip/internal/reconcile"
	"github.com/mesh-intelligence/blockclip/internal/validate"
	"github.com/mesh-intelligence/blockclip/internal/walk"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Orchestrator owns the clipboard boundary and the pointer state.
type Orchestrator struct {
	clipboard types.Clipboard
	pointer   *types.PointerState
	mode      placement.Mode
	busy      sync.Mutex
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMode sets the placement mode. The default is placement.ModeRelative.
func WithMode(m placement.Mode) Option {
	return func(o *Orchestrator) { o.mode = m }
}

// WithPointer shares an existing pointer state, typically one the host
// already feeds from its pointer-move handler.
func WithPointer(p *types.PointerState) Option {
	return func(o *Orchestrator) { o.pointer = p }
}

// New returns an Orchestrator using cb as the external clipboard.
func New(cb types.Clipboard, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		clipboard: cb,
		pointer:   &types.PointerState{},
		mode:      placement.ModeRelative,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PointerMoved records a pointer-move notification in screen coordinates.
func (o *Orchestrator) PointerMoved(x, y float64) {
	o.pointer.Move(x, y)
}

// Pointer returns the pointer state the orchestrator reads on paste.
func (o *Orchestrator) Pointer() *types.PointerState {
	return o.pointer
}

// Copy puts node and everything nested under it on the clipboard, without
// the nodes that follow it. It returns the text written.
func (o *Orchestrator) Copy(ctx context.Context, node *types.BlockNode) (string, error) {
	if node == nil {
		return "", fmt.Errorf("copy: %w", types.ErrNotFound)
	}
	return o.CopySelection(ctx, []*types.BlockNode{node})
}

// CopySelection puts an ordered selection of subtrees on the clipboard.
// Each root keeps its document position so a relative paste preserves the
// selection's layout.
func (o *Orchestrator) CopySelection(ctx context.Context, nodes []*types.BlockNode) (string, error) {
	if !o.busy.TryLock() {
		return "", types.ErrTransferInProgress
	}
	defer o.busy.Unlock()

	payload := extract.Selection(nodes)
	if len(payload.Blocks) == 0 {
		return "", fmt.Errorf("copy: %w", types.ErrNotFound)
	}
	text, err := codec.Encode(payload)
	if err != nil {
		logger.Error("copy failed to encode %s: %v", shape(payload.Blocks), err)
		return "", fmt.Errorf("copy: %w", err)
	}
	if err := o.clipboard.Write(ctx, text); err != nil {
		terr := &types.TransferError{Op: "write", Err: err}
		logger.Error("copy of %s failed: %v", shape(payload.Blocks), terr)
		return "", terr
	}
	logger.Info("copied %s to clipboard", shape(payload.Blocks))
	return text, nil
}

// Result describes a completed paste.
type Result struct {
	RootIDs  []string           // IDs of the merged roots, in payload order
	Created  []types.Symbol     // Symbols created in the destination
	Renamed  []reconcile.Rename // References moved to a renamed symbol
	Replaced []validate.Change  // Constrained fields replaced by a valid option
	Target   types.Position     // Document position the pointer mapped to
	Mode     placement.Mode     // Placement mode actually used
	Retried  bool               // The merge succeeded on the stripped retry
	Stripped int                // Blank fields removed for the retry
}

// Warnings returns the degraded field replacements.
func (r *Result) Warnings() []validate.Change {
	return validate.Report{Changes: r.Replaced}.Warnings()
}

// Paste merges the clipboard payload into doc at the current pointer
// position, mapped through viewport. The pointer state is read once, when
// the paste starts.
func (o *Orchestrator) Paste(ctx context.Context, viewport types.Viewport, doc types.Document) (*Result, error) {
	if !o.busy.TryLock() {
		return nil, types.ErrTransferInProgress
	}
	defer o.busy.Unlock()

	pointer, seen := o.pointer.Snapshot()
	if !seen {
		pointer = types.Point{X: viewport.Left, Y: viewport.Top}
		logger.Debug("no pointer position recorded; pasting at the viewport corner")
	}

	text, err := o.clipboard.Read(ctx)
	if err != nil {
		terr := &types.TransferError{Op: "read", Err: err}
		logger.Error("paste failed: %v", terr)
		return nil, terr
	}
	payload, err := codec.Decode(text)
	if err != nil {
		if errors.Is(err, types.ErrEmptyClipboard) {
			logger.Warn("paste skipped: clipboard is empty")
		} else {
			logger.Warn("paste rejected %d bytes of clipboard text: %v", len(text), err)
		}
		return nil, err
	}

	res := &Result{}
	rec := reconcile.New(doc)
	for _, root := range payload.Blocks {
		if err := rec.ReconcileTree(root); err != nil {
			logger.Error("paste of %s failed: %v", shape(payload.Blocks), err)
			return nil, fmt.Errorf("paste: %w", err)
		}
		report, err := validate.ValidateTree(doc, root)
		if err != nil {
			logger.Error("paste of %s failed: %v", shape(payload.Blocks), err)
			return nil, fmt.Errorf("paste: %w", err)
		}
		res.Replaced = append(res.Replaced, report.Changes...)
	}
	res.Renamed = rec.Renames()
	for _, rn := range res.Renamed {
		logger.Info("symbol %q of type %q conflicts with an existing symbol; using %q", rn.From, rn.Type, rn.To)
	}

	target, err := placement.ScreenToDocument(pointer, viewport)
	if err != nil {
		logger.Error("paste failed: %v", err)
		return nil, fmt.Errorf("paste: %w", err)
	}
	res.Target = target
	res.Mode = placement.Place(payload.Blocks, target, o.mode)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pending := rec.Pending()
	ids, stripped, retried, err := merge(ctx, doc, pending, payload.Blocks)
	if err != nil {
		logger.Error("paste of %s failed: %v", shape(payload.Blocks), err)
		return nil, err
	}
	res.RootIDs = ids
	res.Created = pending
	res.Retried = retried
	res.Stripped = stripped
	logger.Info("pasted %s at (%g, %g)", shape(payload.Blocks), target.X, target.Y)
	return res, nil
}

// shape summarizes a payload for logs without including any values.
func shape(roots []*types.BlockNode) string {
	nodes := 0
	for _, r := range roots {
		nodes += walk.Count(r)
	}
	return fmt.Sprintf("%d root(s), %d node(s)", len(roots), nodes)
}
