package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/Lab80p/Library-management-project/internal/config"
	"github.com/Lab80p/Library-management-project/library"
)

// options holds the persistent flag values shared by all commands.
type options struct {
	verbose    bool
	configPath string
	dataFile   string
}

// Execute runs the CLI and returns an error if any command fails.
func Execute() error {
	opts := &options{}

	root := &cobra.Command{
		Use:          "library",
		Short:        "Manage a small library's catalog, accounts and loans",
		Long:         `A single-operator library manager: book catalog, user accounts, borrowing with a 14-day loan period, star ratings, and CSV exports, persisted to a local snapshot file.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "path to a TOML config file")
	root.PersistentFlags().StringVar(&opts.dataFile, "data", "", "override the data file path")

	root.AddCommand(newShellCmd(opts))
	root.AddCommand(newExportCmd(opts))

	return root.ExecuteContext(context.Background())
}

// openLibrary resolves config and wires the store and service for a
// command. The caller owns the returned store and must close it.
func openLibrary(cmd *cobra.Command, opts *options) (*library.Library, *library.Store, config.Config, error) {
	logger := loggerFromContext(cmd.Context())

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, cfg, err
	}
	if opts.dataFile != "" {
		cfg.DataFile = opts.dataFile
	}

	store, err := library.OpenStore(cfg.DataFile)
	if err != nil {
		return nil, nil, cfg, fmt.Errorf("open data file: %w", err)
	}
	lib, err := library.NewLibrary(store, logger)
	if err != nil {
		store.Close()
		return nil, nil, cfg, err
	}
	return lib, store, cfg, nil
}
