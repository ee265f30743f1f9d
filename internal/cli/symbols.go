package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newSymbolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "List the document's symbols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			syms, err := b.Symbols()
			if err != nil {
				return sysErr(err)
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, syms)
			}
			if len(syms) == 0 {
				fmt.Fprintln(out, "no symbols")
				return nil
			}
			for _, s := range syms {
				typ := s.Type
				if typ == "" {
					typ = "-"
				}
				fmt.Fprintf(out, "%-24s %s\n", s.Name, typ)
			}
			return nil
		},
	}
	cmd.AddCommand(a.newSymbolsAddCmd())
	return cmd
}

func (a *app) newSymbolsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> [type]",
		Short: "Create a symbol",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			typ := ""
			if len(args) == 2 {
				typ = args[1]
			}
			s, err := b.CreateSymbol(args[0], typ)
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return printJSON(cmd.OutOrStdout(), s)
			}
			fmt.Fprintln(cmd.OutOrStdout(), s.SymbolID)
			return nil
		},
	}
}
