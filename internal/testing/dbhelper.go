package testing

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/db/manager"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/internal/testinfra"
)

// TestConnEnv names the variable that points integration tests at an existing server.
const TestConnEnv = "METDBLOAD_TEST_CONN"

var (
	testContainerOnce sync.Once
	testContainerConn string
	testContainerErr  error
)

func getOrStartTestContainer() (string, error) {
	testContainerOnce.Do(func() {
		container, err := testinfra.StartSimplePostgres(context.Background())
		if err != nil {
			testContainerErr = err
			return
		}
		testContainerConn = container.ConnString
	})
	return testContainerConn, testContainerErr
}

// GetTestConnectionString returns the maintenance connection string.
// Priority: METDBLOAD_TEST_CONN env var > auto-started testcontainer > skip test.
func GetTestConnectionString(t *testing.T) string {
	t.Helper()

	if connString := os.Getenv(TestConnEnv); connString != "" {
		return connString
	}

	connString, err := getOrStartTestContainer()
	if err != nil {
		t.Skipf("%s not set and Docker unavailable: %v", TestConnEnv, err)
	}
	return connString
}

// SkipIfShort skips the test if running in short mode (-short flag).
func SkipIfShort(t *testing.T) {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// RequireDatabase combines SkipIfShort and GetTestConnectionString for convenience.
func RequireDatabase(t *testing.T) string {
	t.Helper()

	SkipIfShort(t)
	return GetTestConnectionString(t)
}

// UniqueDBName returns a database name that does not collide across parallel tests.
func UniqueDBName(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, strings.ReplaceAll(uuid.NewString()[:8], "-", ""))
}

// CreateTestDB creates dbName and drops it when the test completes.
func CreateTestDB(t *testing.T, connString, dbName string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Fatalf("Failed to connect for test DB creation: %v", err)
	}
	defer pool.Close()

	if err := manager.New().Create(ctx, pool, dbName); err != nil {
		t.Fatalf("Failed to create test database %s: %v", dbName, err)
	}
	t.Cleanup(func() { CleanupTestDB(t, connString, dbName) })
}

// CreateLoadDB creates dbName with the load schema applied.
func CreateLoadDB(t *testing.T, connString, dbName string) *pgxpool.Pool {
	t.Helper()

	CreateTestDB(t, connString, dbName)
	pool := GetTestPool(t, connString, dbName)
	for _, stmt := range schema.Default().DDL() {
		if _, err := pool.Exec(context.Background(), stmt); err != nil {
			t.Fatalf("Failed to apply schema: %v\n%s", err, stmt)
		}
	}
	return pool
}

// CleanupTestDB drops the test database. Safe to call more than once.
func CleanupTestDB(t *testing.T, connString, dbName string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		t.Logf("Warning: Failed to connect for cleanup: %v", err)
		return
	}
	defer pool.Close()

	mgr := manager.New()
	if err := mgr.TerminateConnections(ctx, pool, dbName); err != nil {
		t.Logf("Warning: %v", err)
	}
	if err := mgr.DropIfExists(ctx, pool, dbName); err != nil {
		t.Logf("Warning: %v", err)
	}
}

// TargetConnString rewrites connString to point at dbName.
// Keyword/value strings get a trailing dbname, which overrides an earlier one.
func TargetConnString(t *testing.T, connString, dbName string) string {
	t.Helper()

	if !strings.HasPrefix(connString, "postgres://") && !strings.HasPrefix(connString, "postgresql://") {
		return connString + " dbname=" + dbName
	}
	u, err := url.Parse(connString)
	if err != nil {
		t.Fatalf("Failed to parse connection string: %v", err)
	}
	u.Path = "/" + dbName
	return u.String()
}

// GetTestPool opens a pool on dbName that is closed when the test completes.
func GetTestPool(t *testing.T, connString, dbName string) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), TargetConnString(t, connString, dbName))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(pool.Close)
	return pool
}
