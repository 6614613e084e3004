package services_test

import (
	"context"
	"testing"

	"gambleio-server/internal/database"
	"gambleio-server/internal/services"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

func newPostgresStore(t *testing.T) *services.PostgresStore {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("gambleio_test"),
		postgres.WithUsername("test_user"),
		postgres.WithPassword("test_password"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, database.MigrateUp(url))

	db, err := database.NewConnection(ctx, url)
	require.NoError(t, err)

	store := services.NewPostgresStore(db)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	runStoreSuite(t, func(t *testing.T) services.Store { return newPostgresStore(t) })
}
