package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/markdown-cli/internal/catalog"
)

func TestPostgresMigrate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS catalog_snapshots").
		WillReturnResult(pgxmock.NewResult("CREATE", 0))

	s := NewPostgresFromPool(mock)
	require.NoError(t, s.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := catalog.New(testProducts())

	mock.ExpectExec("INSERT INTO catalog_snapshots").
		WithArgs(pgxmock.AnyArg(), "fall-import", c.Version(), pgxmock.AnyArg(), 2, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	s := NewPostgresFromPool(mock)
	snap, err := s.SaveSnapshot(context.Background(), "fall-import", c)
	require.NoError(t, err)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, c.Version(), snap.Version)
	assert.Equal(t, 2, snap.ProductCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadSnapshot(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := catalog.New(testProducts())
	productsJSON, err := json.Marshal(c.Products())
	require.NoError(t, err)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots WHERE").
		WithArgs("fall-import").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "version", "products", "product_count", "created_at"}).
			AddRow("snap-1", "fall-import", c.Version(), productsJSON, 2, now))

	s := NewPostgresFromPool(mock)
	loaded, snap, err := s.LoadSnapshot(context.Background(), "fall-import")
	require.NoError(t, err)
	assert.Equal(t, "snap-1", snap.ID)
	assert.Equal(t, c.Version(), loaded.Version())
	assert.Equal(t, c.Products(), loaded.Products())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadSnapshotLatest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	c := catalog.New(testProducts()[:1])
	productsJSON, err := json.Marshal(c.Products())
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots ORDER BY").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "version", "products", "product_count", "created_at"}).
			AddRow("snap-2", "latest", c.Version(), productsJSON, 1, time.Now().UTC()))

	s := NewPostgresFromPool(mock)
	loaded, snap, err := s.LoadSnapshot(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "latest", snap.Name)
	assert.Equal(t, 1, loaded.Len())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresLoadSnapshotNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT id, name, version, products, product_count, created_at FROM catalog_snapshots WHERE").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	s := NewPostgresFromPool(mock)
	_, _, err = s.LoadSnapshot(context.Background(), "missing")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSnapshotNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresListSnapshots(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, name, version, product_count, created_at FROM catalog_snapshots").
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "version", "product_count", "created_at"}).
			AddRow("snap-2", "newer", "v2", 3, now).
			AddRow("snap-1", "older", "v1", 2, now.Add(-time.Hour)))

	s := NewPostgresFromPool(mock)
	list, err := s.ListSnapshots(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newer", list[0].Name)
	assert.Equal(t, "older", list[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
