package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/tootgroup/internal/domain/model"
)

// testKey is a fixed 32-byte AES key for credential tests.
var testKey = []byte("0123456789abcdef0123456789abcdef")

// setupTestDB opens a migrated in-memory database named after the test, so
// parallel tests never share state.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewMemoryDB(t.Name())
	require.NoError(t, err, "open test db")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer), "run migrations")

	return db
}

// seedGroup registers a group with the given name and returns it.
func seedGroup(t *testing.T, db *DB, name string) model.Group {
	t.Helper()

	group, err := NewGroupRepo(db).Add(context.Background(), model.Group{
		Name:        name,
		InstanceURL: "https://example.social",
	})
	require.NoError(t, err)
	return group
}
