package database

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/politrack/politrack-api/pkg/config"
)

func testStorageConfig(t *testing.T, maxConns int) config.StorageConfig {
	t.Helper()
	return config.StorageConfig{
		SQLitePath:   filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout:  time.Second,
		MaxOpenConns: maxConns,
	}
}

// Foreign key enforcement is a per-connection SQLite setting. Pin every
// connection the pool can open and check the pragma on each; a pool member
// without it would let deletes skip the evaluaciones cascade.
func TestNewSQLiteForeignKeysOnEveryPooledConnection(t *testing.T) {
	const poolSize = 4

	db, err := NewSQLite(testStorageConfig(t, poolSize))
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	conns := make([]*sql.Conn, 0, poolSize)
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	for i := 0; i < poolSize; i++ {
		conn, err := db.Conn(ctx)
		require.NoError(t, err)
		conns = append(conns, conn)

		var enabled int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&enabled))
		assert.Equal(t, 1, enabled, "connection %d has foreign_keys off", i)
	}
}

func TestNewSQLiteDefaultsToSingleConnection(t *testing.T) {
	db, err := NewSQLite(testStorageConfig(t, 0))
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, 1, db.Stats().MaxOpenConnections)
}
