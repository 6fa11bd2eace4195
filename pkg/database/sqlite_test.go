package database

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db))
	require.NoError(t, Migrate(ctx, db))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('characters', 'users') ORDER BY name`))
	assert.Equal(t, []string{"characters", "users"}, tables)
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(db.DriverName()))
}

func TestSQLiteFileDatabase(t *testing.T) {
	db, err := NewSQLite(t.TempDir() + "/got.db")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(context.Background(), db))
}

func TestMigrateUnsupportedDriver(t *testing.T) {
	db := sqlx.NewDb(nil, "mysql")
	err := Migrate(context.Background(), db)
	require.Error(t, err)
}
