package e2e_test

import (
	"context"
	"sync"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	mongocontainer "github.com/testcontainers/testcontainers-go/modules/mongodb"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

var (
	postgresOnce sync.Once
	postgresDSN  string
	postgresErr  error

	mongoOnce sync.Once
	mongoURI  string
	mongoErr  error
)

// getSharedPostgresDSN starts one PostgreSQL container for every E2E test.
func getSharedPostgresDSN(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping postgres container test in short mode")
	}

	postgresOnce.Do(func() {
		ctx := context.Background()

		container, err := pgcontainer.Run(ctx,
			"postgres:18-alpine",
			pgcontainer.WithDatabase("testdb"),
			pgcontainer.WithUsername("testuser"),
			pgcontainer.WithPassword("testpass"),
			pgcontainer.BasicWaitStrategies(),
		)
		if err != nil {
			postgresErr = err
			return
		}
		containerStops = append(containerStops, func() { _ = testcontainers.TerminateContainer(container) })

		postgresDSN, postgresErr = container.ConnectionString(ctx, "sslmode=disable")
	})

	if postgresErr != nil {
		t.Fatalf("failed to start postgres container: %v", postgresErr)
	}
	return postgresDSN
}

// getSharedMongoURI starts one MongoDB container for every E2E test.
func getSharedMongoURI(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping mongodb container test in short mode")
	}

	mongoOnce.Do(func() {
		ctx := context.Background()

		container, err := mongocontainer.Run(ctx, "mongo:7")
		if err != nil {
			mongoErr = err
			return
		}
		containerStops = append(containerStops, func() { _ = testcontainers.TerminateContainer(container) })

		mongoURI, mongoErr = container.ConnectionString(ctx)
	})

	if mongoErr != nil {
		t.Fatalf("failed to start mongodb container: %v", mongoErr)
	}
	return mongoURI
}
