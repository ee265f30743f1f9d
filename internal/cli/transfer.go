// Copy and paste commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/blockclip/internal/clipboard"
	"github.com/mesh-intelligence/blockclip/internal/placement"
	"github.com/mesh-intelligence/blockclip/internal/transfer"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

func (a *app) newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <id>...",
		Short: "Copy blocks to the clipboard",
		Long: "Copy one block, or an ordered selection of blocks, with everything nested\n" +
			"inside them. The blocks that follow each copied block are not copied.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			nodes := make([]*types.BlockNode, 0, len(args))
			for _, id := range args {
				n, err := b.Block(cmd.Context(), id)
				if err != nil {
					return fmt.Errorf("block %q: %w", id, err)
				}
				nodes = append(nodes, n)
			}

			cb, err := clipboard.New(cfg)
			if err != nil {
				return userErr(err)
			}
			text, err := transfer.New(cb).CopySelection(cmd.Context(), nodes)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "copied %d block(s)\n", len(nodes))
			return nil
		},
	}
}

type pasteFlags struct {
	x, y     float64
	viewport types.Viewport
	mode     string
}

func (a *app) newPasteCmd() *cobra.Command {
	var pf pasteFlags
	cmd := &cobra.Command{
		Use:   "paste",
		Short: "Paste the clipboard into the document",
		Long: "Paste the clipboard payload at a pointer position given in screen\n" +
			"coordinates and mapped through the viewport. Without --x and --y the\n" +
			"payload lands at the viewport's top-left corner.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			mode := cfg.PlacementMode()
			if pf.mode != "" {
				mode = pf.mode
			}
			if mode != types.PlacementRelative && mode != types.PlacementAbsolute {
				return userErr(fmt.Errorf("--mode %q: %w", mode, types.ErrPlacementUnknown))
			}

			cb, err := clipboard.New(cfg)
			if err != nil {
				return userErr(err)
			}
			o := transfer.New(cb, transfer.WithMode(placement.Mode(mode)))
			if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
				o.PointerMoved(pf.x, pf.y)
			}

			res, err := o.Paste(cmd.Context(), pf.viewport, b)
			if err != nil {
				return err
			}
			return a.printPaste(cmd, res)
		},
	}
	f := cmd.Flags()
	f.Float64Var(&pf.x, "x", 0, "pointer x in screen coordinates")
	f.Float64Var(&pf.y, "y", 0, "pointer y in screen coordinates")
	f.Float64Var(&pf.viewport.Left, "left", 0, "viewport left edge on screen")
	f.Float64Var(&pf.viewport.Top, "top", 0, "viewport top edge on screen")
	f.Float64Var(&pf.viewport.OffsetX, "offset-x", 0, "document x shown at the viewport's left edge")
	f.Float64Var(&pf.viewport.OffsetY, "offset-y", 0, "document y shown at the viewport's top edge")
	f.Float64Var(&pf.viewport.Scale, "scale", 1, "viewport zoom factor")
	f.StringVar(&pf.mode, "mode", "", "placement mode: relative or absolute (default from config)")
	return cmd
}

func (a *app) printPaste(cmd *cobra.Command, res *transfer.Result) error {
	out := cmd.OutOrStdout()
	if a.flags.jsonMode {
		return printJSON(out, res)
	}
	for _, id := range res.RootIDs {
		fmt.Fprintln(out, id)
	}
	for _, s := range res.Created {
		fmt.Fprintf(out, "created symbol %s (%s)\n", s.Name, s.Type)
	}
	for _, r := range res.Renamed {
		fmt.Fprintf(out, "renamed %s -> %s (%s)\n", r.From, r.To, r.Type)
	}
	for _, c := range res.Replaced {
		if c.Degraded {
			fmt.Fprintf(out, "warning: %s.%s has no valid options; pasted %q as empty\n", c.Kind, c.Field, fmt.Sprint(c.From))
			continue
		}
		fmt.Fprintf(out, "replaced %s.%s: %v -> %v\n", c.Kind, c.Field, c.From, c.To)
	}
	if res.Retried {
		fmt.Fprintf(out, "retried without %d blank field(s)\n", res.Stripped)
	}
	return nil
}
