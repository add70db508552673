// Package store persists catalog snapshots so a dataset imported once can
// back any number of later report or serve sessions. Snapshots are
// immutable; re-importing writes a new one.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/markdown-cli/internal/catalog"
)

// Snapshot describes one stored catalog.
type Snapshot struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Version      string    `json:"version"`
	ProductCount int       `json:"product_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// Store defines catalog snapshot persistence.
type Store interface {
	// SaveSnapshot stores the catalog under a human-readable name.
	SaveSnapshot(ctx context.Context, name string, c *catalog.Catalog) (*Snapshot, error)
	// LoadSnapshot loads by snapshot ID or name; an empty ref loads the
	// most recently created snapshot.
	LoadSnapshot(ctx context.Context, ref string) (*catalog.Catalog, *Snapshot, error)
	// ListSnapshots returns all snapshots, newest first.
	ListSnapshots(ctx context.Context) ([]Snapshot, error)

	Migrate(ctx context.Context) error
	Close() error
}

// ErrSnapshotNotFound is returned when no snapshot matches the ref.
var ErrSnapshotNotFound = eris.New("store: snapshot not found")

// Open creates a store for the configured driver.
func Open(ctx context.Context, driver, databaseURL string) (Store, error) {
	switch driver {
	case "sqlite":
		return NewSQLite(databaseURL)
	case "postgres":
		return NewPostgres(ctx, databaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q (want sqlite or postgres)", driver)
	}
}
