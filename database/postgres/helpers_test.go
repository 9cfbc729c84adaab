package postgres_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	filecrud "github.com/Yashchauhan008/file-crud"
	"github.com/Yashchauhan008/file-crud/database/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// testCleanup terminates the shared container; TestMain calls it once all
// tests have finished.
var testCleanup func()

// sharedPool starts a single postgres container for the package. Each test
// works on its own uniquely named table inside it.
var sharedPool = sync.OnceValues(func() (*pgxpool.Pool, error) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:18-alpine",
		pgcontainer.WithDatabase("filecrud"),
		pgcontainer.WithUsername("filecrud"),
		pgcontainer.WithPassword("filecrud"),
		pgcontainer.BasicWaitStrategies(),
	)
	if err != nil {
		return nil, fmt.Errorf("start postgres container: %w", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("connection string: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		_ = testcontainers.TerminateContainer(container)
		return nil, fmt.Errorf("open pool: %w", err)
	}

	testCleanup = func() {
		pool.Close()
		_ = testcontainers.TerminateContainer(container)
	}
	return pool, nil
})

func getSharedTestDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	pool, err := sharedPool()
	require.NoError(t, err)
	return pool
}

func getRandomString(t *testing.T) string {
	t.Helper()
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

func dropTable(ctx context.Context, pool *pgxpool.Pool, tableName string) error {
	_, err := pool.Exec(ctx, "DROP TABLE IF EXISTS "+pgx.Identifier{tableName}.Sanitize()+" CASCADE")
	return err
}

func getDSN(pool *pgxpool.Pool) string {
	return pool.Config().ConnString()
}

// setupTestRepo migrates a fresh table and drops it when the test ends.
func setupTestRepo(t *testing.T) filecrud.ResourceRepo {
	t.Helper()

	pool := getSharedTestDatabase(t)
	tables := filecrud.Tables{Resources: "resources_" + getRandomString(t)}

	db, err := postgres.Connect(t.Context(), getDSN(pool), tables)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(t.Context()))

	t.Cleanup(func() {
		_ = dropTable(context.Background(), pool, tables.Resources)
		_ = db.Close()
	})
	return db.GetRepo()
}
