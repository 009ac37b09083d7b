package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Lab80p/Library-management-project/library"
)

func newExportCmd(opts *options) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write CSV snapshots of admins, books and users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())

			lib, store, cfg, err := openLibrary(cmd, opts)
			if err != nil {
				return err
			}
			defer store.Close()

			dir := cfg.ExportDir
			if outDir != "" {
				dir = outDir
			}
			if err := lib.Export(dir); err != nil {
				return fmt.Errorf("export: %w", err)
			}

			for _, name := range []string{library.AdminsExportFile, library.BooksExportFile, library.UsersExportFile} {
				logger.Info("wrote", "file", filepath.Join(dir, name))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (defaults to the configured export dir)")
	return cmd
}
