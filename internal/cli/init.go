package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

func (a *app) newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the blockclip document",
		Long:  "Create the configuration and data directories, then initialize the document store.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, cfg, err := a.attach()
			if err != nil {
				return err
			}
			if err := b.Detach(); err != nil {
				return sysErr(fmt.Errorf("finalize document: %w", err))
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "blockclip initialized successfully")
			fmt.Fprintln(out, "  config:", filepath.Join(a.configDir, configFileExt))
			fmt.Fprintln(out, "  data:  ", cfg.DataDir)
			return nil
		},
	}
}
