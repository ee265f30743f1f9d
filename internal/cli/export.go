package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export <dir>",
		Short: "Write the document as JSONL files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()
			if err := b.Export(cmd.Context(), args[0]); err != nil {
				return sysErr(fmt.Errorf("export: %w", err))
			}
			return nil
		},
	}
}

func (a *app) newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <dir>",
		Short: "Load JSONL files written by export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()
			n, err := b.Import(cmd.Context(), args[0])
			if err != nil {
				return sysErr(fmt.Errorf("import: %w", err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d block(s)\n", n)
			return nil
		},
	}
}
