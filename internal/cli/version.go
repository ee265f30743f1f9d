package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/blockclip/pkg/blockclip"
)

const modulePath = "github.com/mesh-intelligence/blockclip"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the blockclip version",
		Args:  cobra.NoArgs,
		// version needs no configuration.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "blockclip v%s\nmodule: %s\n", blockclip.Version, modulePath)
			return nil
		},
	}
}
