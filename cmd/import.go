package main

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Import catalog files into the snapshot store",
	Long: `Parses one or more catalog CSV/XLSX files, validates their schema
and data ranges, and saves each as an immutable snapshot. Later
report/best/serve invocations can read snapshots instead of
re-parsing files.

Examples:
  import catalog.csv
  import --name spring-2026 exports/markdown_spring.xlsx
  import exports/*.csv`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

func init() {
	f := importCmd.Flags()
	f.String("name", "", "snapshot name (single file only; default: file name)")
	f.Int("concurrency", 4, "files parsed in parallel")

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	name, _ := cmd.Flags().GetString("name")
	concurrency, _ := cmd.Flags().GetInt("concurrency")

	if name != "" && len(args) > 1 {
		return eris.New("import: --name only applies to a single file")
	}

	mode, err := catalog.ParseIntegrityMode(cfg.Integrity.Mode)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, path := range args {
		g.Go(func() error {
			c, err := catalog.LoadFile(gctx, path, catalog.LoadOptions{Integrity: mode})
			if err != nil {
				return eris.Wrapf(err, "import %s", path)
			}

			snapName := name
			if snapName == "" {
				snapName = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			}

			snap, err := st.SaveSnapshot(gctx, snapName, c)
			if err != nil {
				return eris.Wrapf(err, "import %s", path)
			}

			zap.L().Info("snapshot saved",
				zap.String("file", path),
				zap.String("snapshot", snap.Name),
				zap.String("id", snap.ID),
				zap.Int("products", snap.ProductCount),
			)
			return nil
		})
	}

	return g.Wait()
}
