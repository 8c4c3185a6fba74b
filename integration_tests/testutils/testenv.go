package testutils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Black-And-White-Club/tipster/integration_tests/containers"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/uptrace/bun"
)

// TestEnvironment is a migrated Postgres container shared by a test package.
type TestEnvironment struct {
	Container *postgres.PostgresContainer
	DSN       string
	DB        *bun.DB
}

var (
	sharedEnv     *TestEnvironment
	sharedEnvOnce sync.Once
	sharedEnvErr  error
)

// GetTestEnv starts the container on first use and resets its tables for
// the calling test. Tests are skipped under -short.
func GetTestEnv(t *testing.T) *TestEnvironment {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	sharedEnvOnce.Do(func() {
		sharedEnv, sharedEnvErr = newTestEnvironment(context.Background())
	})
	if sharedEnvErr != nil {
		t.Fatalf("test environment initialization failed: %v", sharedEnvErr)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := CleanupDatabase(ctx, sharedEnv.DB); err != nil {
		t.Fatalf("failed to reset database: %v", err)
	}
	return sharedEnv
}

func newTestEnvironment(ctx context.Context) (*TestEnvironment, error) {
	container, dsn, err := containers.SetupPostgresContainer(ctx)
	if err != nil {
		return nil, err
	}
	db := OpenDB(dsn)
	if err := RunMigrations(ctx, db, dsn); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		return nil, err
	}
	return &TestEnvironment{Container: container, DSN: dsn, DB: db}, nil
}

// Teardown stops the shared container. Call it from TestMain.
func Teardown() {
	if sharedEnv == nil {
		return
	}
	ctx := context.Background()
	_ = sharedEnv.DB.Close()
	_ = sharedEnv.Container.Terminate(ctx)
}
