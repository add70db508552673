package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/engine"
	"github.com/sells-group/markdown-cli/internal/store"
)

// loadCatalog resolves the catalog source for a command: an explicit
// input file wins, then an explicit snapshot ref, then the configured
// defaults in the same order.
func loadCatalog(ctx context.Context, inputPath, snapshotRef string) (*catalog.Catalog, error) {
	mode, err := catalog.ParseIntegrityMode(cfg.Integrity.Mode)
	if err != nil {
		return nil, err
	}
	opts := catalog.LoadOptions{Integrity: mode}

	if inputPath == "" && snapshotRef == "" {
		inputPath = cfg.Catalog.Path
		snapshotRef = cfg.Catalog.Snapshot
		if inputPath == "" && snapshotRef == "" {
			return nil, eris.New("no catalog source: pass --input or --snapshot, or set catalog.path in config")
		}
	}

	if inputPath != "" {
		c, err := catalog.LoadFile(ctx, inputPath, opts)
		if err != nil {
			return nil, err
		}
		zap.L().Info("catalog loaded",
			zap.String("source", inputPath),
			zap.Int("products", c.Len()),
			zap.String("version", c.Version()[:12]),
		)
		return c, nil
	}

	st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	c, snap, err := st.LoadSnapshot(ctx, snapshotRef)
	if err != nil {
		return nil, err
	}
	zap.L().Info("catalog loaded from snapshot",
		zap.String("snapshot", snap.Name),
		zap.String("id", snap.ID),
		zap.Int("products", c.Len()),
	)
	return c, nil
}

// loadView loads the catalog and applies the command's filter flags.
func loadView(ctx context.Context, inputPath, snapshotRef, categories, seasons string) (*engine.View, error) {
	c, err := loadCatalog(ctx, inputPath, snapshotRef)
	if err != nil {
		return nil, err
	}
	eng := engine.New(c)
	return eng.View(engine.ParseFilter(categories, seasons)), nil
}

// withOutput runs fn against the --output file, or stdout when empty.
func withOutput(path string, fn func(io.Writer) error) error {
	if path == "" {
		return fn(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create output %s", path)
	}
	defer f.Close()
	return fn(f)
}
