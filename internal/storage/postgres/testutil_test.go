package postgres

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// migrationsDir is read from disk: the migrations package imports this one.
const migrationsDir = "../migrations/postgres"

// newTestStore starts a PostgreSQL container with the token_requests schema
// and returns a store over it. The container is removed when the test ends.
func newTestStore(t *testing.T) *TokenRequestStore {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:15-alpine",
		postgres.WithDatabase("memecoin"),
		postgres.WithUsername("memecoin"),
		postgres.WithPassword("memecoin"),
		postgres.WithInitScripts(schemaFiles(t)...),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "start postgres container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "connect")
	t.Cleanup(pool.Close)

	return NewTokenRequestStore(pool)
}

// schemaFiles lists the migration files in apply order.
func schemaFiles(t *testing.T) []string {
	t.Helper()

	files, err := filepath.Glob(filepath.Join(migrationsDir, "*.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files, "no migrations in %s", migrationsDir)

	// Glob sorts by name, which is the 001_, 002_ order. Init scripts need
	// absolute paths to be copied into the container.
	for i, f := range files {
		abs, err := filepath.Abs(f)
		require.NoError(t, err)
		files[i] = abs
	}
	return files
}

func ptr[T any](v T) *T {
	return &v
}
