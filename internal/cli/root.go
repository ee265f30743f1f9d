// Package cli implements the blockclip command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mesh-intelligence/blockclip/internal/logger"
	"github.com/mesh-intelligence/blockclip/internal/paths"
	"github.com/mesh-intelligence/blockclip/internal/sqlite"
	"github.com/mesh-intelligence/blockclip/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	jsonMode  bool
	verbose   bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
}

// NewRootCmd creates the top-level "blockclip" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "blockclip",
		Short: "Copy and paste block trees between documents",
		Long: "blockclip copies block subtrees from a document to the clipboard and pastes\n" +
			"them into a document, reconciling symbols and constrained fields.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: $(CWD)/.blockclip)")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&a.flags.verbose, "verbose", false, "log transfer steps to stderr")

	root.AddCommand(newVersionCmd())
	root.AddCommand(a.newInitCmd())
	root.AddCommand(a.newAddCmd())
	root.AddCommand(a.newBlocksCmd())
	root.AddCommand(a.newShowCmd())
	root.AddCommand(a.newCopyCmd())
	root.AddCommand(a.newPasteCmd())
	root.AddCommand(a.newSymbolsCmd())
	root.AddCommand(a.newOptionsCmd())
	root.AddCommand(a.newExportCmd())
	root.AddCommand(a.newImportCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "blockclip:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// load resolves the configuration directory and reads config.yaml.
func (a *app) load() error {
	dir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return sysErr(fmt.Errorf("resolve config dir: %w", err))
	}
	v, err := loadConfig(dir)
	if err != nil {
		return sysErr(err)
	}
	a.configDir = dir
	a.v = v
	logger.SetVerbose(a.flags.verbose || v.GetBool(cfgKeyVerbose))
	return nil
}

// config builds the validated runtime configuration.
func (a *app) config() (types.Config, error) {
	dataDir, err := paths.ResolveDataDir(a.flags.dataDir, a.v.GetString(cfgKeyDataDir))
	if err != nil {
		return types.Config{}, sysErr(fmt.Errorf("resolve data dir: %w", err))
	}
	cfg := types.Config{}
	if err := a.v.Unmarshal(&cfg); err != nil {
		return types.Config{}, userErr(fmt.Errorf("parse config: %w", err))
	}
	cfg.DataDir = dataDir
	cfg.Verbose = logger.IsVerbose()
	if cfg.Clipboard == types.ClipboardFile {
		if cfg.ClipboardFile, err = paths.ResolveClipboardFile(cfg.ClipboardFile, dataDir); err != nil {
			return types.Config{}, sysErr(err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return types.Config{}, userErr(fmt.Errorf("config: %w", err))
	}
	return cfg, nil
}

// attach opens the document named by the configuration. The caller must
// Detach the returned backend.
func (a *app) attach() (*sqlite.Backend, types.Config, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, cfg, err
	}
	if cfg.Backend != types.BackendSQLite {
		return nil, cfg, userErr(fmt.Errorf("backend %q cannot persist between commands; use %q", cfg.Backend, types.BackendSQLite))
	}
	b := sqlite.NewBackend()
	if err := b.Attach(cfg); err != nil {
		return nil, cfg, sysErr(fmt.Errorf("attach document: %w", err))
	}
	return b, cfg, nil
}

// cliError carries the exit code for an error.
type cliError struct {
	code int
	err  error
}

func (e *cliError) Error() string { return e.err.Error() }
func (e *cliError) Unwrap() error { return e.err }

func userErr(err error) error { return &cliError{code: exitUserError, err: err} }
func sysErr(err error) error  { return &cliError{code: exitSysError, err: err} }

// userErrors are sentinels caused by input rather than by the system.
var userErrors = []error{
	types.ErrNotFound,
	types.ErrInvalidName,
	types.ErrDuplicateName,
	types.ErrInvalidKind,
	types.ErrInvalidViewport,
	types.ErrEmptyClipboard,
	types.ErrMalformedPayload,
	types.ErrSchemaRejection,
	types.ErrTransferInProgress,
}

// exitCode maps err to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ce *cliError
	if errors.As(err, &ce) {
		return ce.code
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	if errors.Is(err, types.ErrTransferFailure) {
		return exitSysError
	}
	// cobra reports unknown commands and bad flags as plain errors.
	return exitUserError
}
