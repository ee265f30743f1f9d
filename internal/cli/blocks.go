// Commands that add and inspect blocks in the document.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/blockclip/internal/codec"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

func (a *app) newAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <file.json|->",
		Short: "Add block trees from a payload file",
		Long: "Add the block trees of a payload file as new top-level subtrees. The file\n" +
			"uses the clipboard payload format; successors are kept. Use - for stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			p, err := codec.Decode(string(data))
			if err != nil {
				return err
			}

			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			ids := make([]string, 0, len(p.Blocks))
			for _, root := range p.Blocks {
				if root.Position == nil {
					root.Position = &types.Position{}
				}
				id, err := b.Add(cmd.Context(), root)
				if err != nil {
					return sysErr(fmt.Errorf("add block: %w", err))
				}
				ids = append(ids, id)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), ids)
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, sysErr(fmt.Errorf("read stdin: %w", err))
		}
		return data, nil
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, userErr(fmt.Errorf("read %s: %w", name, err))
	}
	return data, nil
}

func (a *app) newBlocksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "blocks",
		Short: "List top-level blocks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			roots, err := b.Roots(cmd.Context())
			if err != nil {
				return sysErr(err)
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				views := make([]*nodeView, 0, len(roots))
				for _, r := range roots {
					views = append(views, viewOf(r))
				}
				return printJSON(out, views)
			}
			if len(roots) == 0 {
				fmt.Fprintln(out, "no blocks")
				return nil
			}
			for _, r := range roots {
				pos := types.Position{}
				if r.Position != nil {
					pos = *r.Position
				}
				fmt.Fprintf(out, "%s  %-20s  (%g, %g)\n", r.ID, r.Kind, pos.X, pos.Y)
			}
			return nil
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Display a block and everything attached to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			n, err := b.Block(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("block %q: %w", args[0], err)
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), viewOf(n))
			}
			printTree(cmd.OutOrStdout(), n, "", "")
			return nil
		},
	}
}
