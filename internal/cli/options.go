package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) newOptionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Manage the option sets of constrained fields",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "set <kind> <field> [option]...",
		Short: "Constrain a field to a set of options",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()
			return b.SetOptions(args[0], args[1], args[2:]...)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "get <kind> <field>",
		Short: "Print the options of a field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()

			opts, constrained, err := b.Options(args[0], args[1])
			if err != nil {
				return sysErr(err)
			}
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return printJSON(out, map[string]any{"constrained": constrained, "options": opts})
			}
			if !constrained {
				fmt.Fprintln(out, "free-form")
				return nil
			}
			fmt.Fprintln(out, strings.Join(opts, "\n"))
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear <kind> <field>",
		Short: "Make a field free-form again",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, _, err := a.attach()
			if err != nil {
				return err
			}
			defer b.Detach()
			return b.ClearOptions(args[0], args[1])
		},
	})
	return cmd
}
