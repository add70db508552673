package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/markdown-cli/internal/catalog"
	"github.com/sells-group/markdown-cli/internal/db"
	"github.com/sells-group/markdown-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// preparedStatements lists queries to prepare on each new connection.
var preparedStatements = map[string]string{
	"insert_snapshot": `INSERT INTO catalog_snapshots (id, name, version, products, product_count, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
	"load_latest":     `SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots ORDER BY created_at DESC LIMIT 1`,
	"load_by_ref":     `SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots WHERE id::text = $1 OR name = $1 ORDER BY created_at DESC LIMIT 1`,
	"list_snapshots":  `SELECT id, name, version, product_count, created_at FROM catalog_snapshots ORDER BY created_at DESC`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: pool.Close}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS catalog_snapshots (
	id            UUID PRIMARY KEY,
	name          TEXT NOT NULL,
	version       TEXT NOT NULL,
	products      JSONB NOT NULL,
	product_count INTEGER NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_snapshots_name ON catalog_snapshots(name);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON catalog_snapshots(created_at);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, name string, c *catalog.Catalog) (*Snapshot, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	productsJSON, err := json.Marshal(c.Products())
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal products")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO catalog_snapshots (id, name, version, products, product_count, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		id, name, c.Version(), productsJSON, c.Len(), now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert snapshot")
	}

	return &Snapshot{
		ID:           id,
		Name:         name,
		Version:      c.Version(),
		ProductCount: c.Len(),
		CreatedAt:    now,
	}, nil
}

func (s *PostgresStore) LoadSnapshot(ctx context.Context, ref string) (*catalog.Catalog, *Snapshot, error) {
	var row pgx.Row
	if ref == "" {
		row = s.pool.QueryRow(ctx,
			`SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots ORDER BY created_at DESC LIMIT 1`)
	} else {
		row = s.pool.QueryRow(ctx,
			`SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots WHERE id::text = $1 OR name = $1 ORDER BY created_at DESC LIMIT 1`,
			ref)
	}

	var snap Snapshot
	var productsJSON []byte
	err := row.Scan(&snap.ID, &snap.Name, &snap.Version, &productsJSON, &snap.ProductCount, &snap.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, eris.Wrapf(ErrSnapshotNotFound, "postgres: ref %q", ref)
	}
	if err != nil {
		return nil, nil, eris.Wrap(err, "postgres: load snapshot")
	}

	var products []model.ProductRecord
	if err := json.Unmarshal(productsJSON, &products); err != nil {
		return nil, nil, eris.Wrap(err, "postgres: unmarshal products")
	}

	return catalog.New(products), &snap, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, version, product_count, created_at FROM catalog_snapshots ORDER BY created_at DESC`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list snapshots")
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		if err := rows.Scan(&snap.ID, &snap.Name, &snap.Version, &snap.ProductCount, &snap.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan snapshot")
		}
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "postgres: iterate snapshots")
}
