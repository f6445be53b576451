package database

import (
	"context"
	"path/filepath"
	"testing"

	"katalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestOpen_SQLite(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "katalog.db")

	db, err := Open(config.DatabaseConfig{Driver: config.DriverSQLite, DSN: dsn}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.NoError(t, Ping(context.Background(), db))

	// Unique violations must come back as gorm.ErrDuplicatedKey.
	require.NoError(t, db.Exec("CREATE TABLE t (code TEXT UNIQUE)").Error)
	require.NoError(t, db.Exec("INSERT INTO t (code) VALUES ('A')").Error)
	err = db.Exec("INSERT INTO t (code) VALUES ('A')").Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Driver: config.DriverMemory}, nil)

	assert.ErrorContains(t, err, "unsupported database driver")
}
