package recipient

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

type stubRow struct {
	values []any
	err    error
}

func (r stubRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i, d := range dest {
		switch ptr := d.(type) {
		case *string:
			*ptr = r.values[i].(string)
		case *time.Time:
			*ptr = r.values[i].(time.Time)
		}
	}
	return nil
}

type stubDB struct {
	sql  string
	args []any
	row  stubRow
}

func (s *stubDB) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	s.sql = sql
	s.args = args
	return s.row
}

func TestPostgresStoreGetNotFound(t *testing.T) {
	db := &stubDB{row: stubRow{err: pgx.ErrNoRows}}
	_, err := PostgresStore{DB: db}.Get(context.Background(), " shop1 ")
	require.ErrorIs(t, err, ErrNotFound)
	require.Equal(t, selectRecipient, db.sql)
	require.Equal(t, []any{"shop1"}, db.args)
}

func TestPostgresStoreGetWrapsStorageErrors(t *testing.T) {
	boom := errors.New("connection reset")
	_, err := PostgresStore{DB: &stubDB{row: stubRow{err: boom}}}.Get(context.Background(), "shop1")
	require.ErrorIs(t, err, boom)
	require.False(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStorePutUpserts(t *testing.T) {
	updated := time.Date(2026, 10, 1, 12, 0, 0, 0, time.FixedZone("x", 3600))
	db := &stubDB{row: stubRow{values: []any{"shop1", "Jane", "jane@example.com", updated}}}

	rec, err := PostgresStore{DB: db}.Put(context.Background(), "shop1", "Jane", "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, upsertRecipient, db.sql)
	require.Equal(t, []any{"shop1", "Jane", "jane@example.com"}, db.args)
	require.Equal(t, Recipient{MerchantID: "shop1", Name: "Jane", Email: "jane@example.com", UpdatedAt: updated.UTC()}, rec)
}

func TestPostgresStoreWithoutDB(t *testing.T) {
	_, err := PostgresStore{}.Get(context.Background(), "shop1")
	require.Error(t, err)
}

func TestMigrateURL(t *testing.T) {
	require.Equal(t, "pgx5://u:p@db:5432/zelle?sslmode=disable", MigrateURL("postgres://u:p@db:5432/zelle?sslmode=disable"))
	require.Equal(t, "pgx5://db/zelle", MigrateURL("postgresql://db/zelle"))
	require.Equal(t, "pgx5://db/zelle", MigrateURL("pgx5://db/zelle"))
}
