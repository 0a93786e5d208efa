package sqlstore

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSQLiteDB opens a migrated in-memory database.
func newSQLiteDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, Migrate(ctx, db, "up", zerolog.Nop()))
	return db
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "planner.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)",
		sqliteDSN("planner.db?_pragma=busy_timeout(5000)"))
	assert.Equal(t, "x.db?_pragma=foreign_keys(0)", sqliteDSN("x.db?_pragma=foreign_keys(0)"))
}

func TestOpen_SQLiteForeignKeysSurviveReconnect(t *testing.T) {
	db, err := Open(context.Background(), Config{Driver: DriverSQLite, DSN: t.TempDir() + "/planner.db"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	// Drop the pooled connection so the next query dials a fresh one.
	db.SetMaxIdleConns(0)
	db.SetMaxIdleConns(1)

	var enabled int
	require.NoError(t, db.Get(&enabled, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, enabled)
}

func TestMigrate_UpDownUp(t *testing.T) {
	db := newSQLiteDB(t)
	ctx := context.Background()

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'day_entries') ORDER BY name`))
	assert.Equal(t, []string{"day_entries", "users"}, tables)

	require.NoError(t, Migrate(ctx, db, "down", zerolog.Nop()))
	tables = nil
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'day_entries')`))
	assert.Empty(t, tables)

	require.NoError(t, Migrate(ctx, db, "up", zerolog.Nop()))
}

func TestMigrate_UnknownDriver(t *testing.T) {
	db := sqlx.NewDb(nil, "mysql")
	assert.Error(t, Migrate(context.Background(), db, "up", zerolog.Nop()))
}
