package di

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dividend_backend/internal/platform/db"
)

func TestMigrateSnapshots_ClosesDatabaseOnFailure(t *testing.T) {
	t.Parallel()

	open, err := db.OpenerFor(db.DriverSQLite)
	require.NoError(t, err)
	gdb, err := open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	// a view with the table's name makes CREATE TABLE fail
	require.NoError(t, gdb.Exec("CREATE VIEW snapshots AS SELECT 1 AS id").Error)

	err = migrateSnapshots(gdb)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate snapshots")

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "database should be closed after a failed migration")
}

func TestMigrateSnapshots_Success(t *testing.T) {
	t.Parallel()

	open, err := db.OpenerFor(db.DriverSQLite)
	require.NoError(t, err)
	gdb, err := open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	require.NoError(t, migrateSnapshots(gdb))
	assert.True(t, gdb.Migrator().HasTable("snapshots"))

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}
