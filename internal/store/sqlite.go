package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS catalog_snapshots (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	version       TEXT NOT NULL,
	products      TEXT NOT NULL,
	product_count INTEGER NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_snapshots_name ON catalog_snapshots(name);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON catalog_snapshots(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, name string, c *catalog.Catalog) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	productsJSON, err := json.Marshal(c.Products())
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal products")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO catalog_snapshots (id, name, version, products, product_count, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, c.Version(), string(productsJSON), c.Len(), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert snapshot")
	}

	return &Snapshot{
		ID:           id,
		Name:         name,
		Version:      c.Version(),
		ProductCount: c.Len(),
		CreatedAt:    now,
	}, nil
}

func (s *SQLiteStore) LoadSnapshot(ctx context.Context, ref string) (*catalog.Catalog, *Snapshot, error) {
	query := `SELECT id, name, version, products, product_count, created_at
		FROM catalog_snapshots`
	args := []any{}
	if ref != "" {
		query += ` WHERE id = ? OR name = ?`
		args = append(args, ref, ref)
	}
	query += ` ORDER BY created_at DESC LIMIT 1`

	var snap Snapshot
	var productsJSON string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&snap.ID, &snap.Name, &snap.Version, &productsJSON, &snap.ProductCount, &snap.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil, eris.Wrapf(ErrSnapshotNotFound, "sqlite: ref %q", ref)
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: load snapshot")
	}

	var products []model.ProductRecord
	if err := json.Unmarshal([]byte(productsJSON), &products); err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: unmarshal products")
	}

	return catalog.New(products), &snap, nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, version, product_count, created_at
		FROM catalog_snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Version, &snap.ProductCount, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}
