//go:build conntest

package conntest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/logging"
	"github.com/vvka-141/metdbload/internal/testinfra"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

const (
	loaderRole     = "metdb_loader"
	loaderPassword = "loader-secret"
)

// loaderRoleSQL provisions a non-superuser that may create databases, the
// way a shared METdb server is usually set up.
var loaderRoleSQL = fmt.Sprintf(
	"CREATE ROLE %s LOGIN PASSWORD '%s' CREATEDB;\n", loaderRole, loaderPassword)

var stdContainer *testinfra.PostgresContainer

func TestMain(m *testing.M) {
	ctx := context.Background()

	dir, err := os.MkdirTemp("", "metdbload-conntest-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create temp dir: %v\n", err)
		os.Exit(1)
	}

	script := filepath.Join(dir, "01-loader-role.sql")
	if err := os.WriteFile(script, []byte(loaderRoleSQL), 0644); err != nil {
		fmt.Fprintf(os.Stderr, "write init script: %v\n", err)
		os.Exit(1)
	}

	std, err := testinfra.StartPostgresWithInitScripts(ctx, script)
	if err != nil {
		fmt.Fprintf(os.Stderr, "start postgres: %v\n", err)
		os.RemoveAll(dir)
		os.Exit(1)
	}
	stdContainer = std

	code := m.Run()

	stdContainer.Terminate(ctx) //nolint:errcheck
	os.RemoveAll(dir)
	os.Exit(code)
}

func connectWithConfig(t *testing.T, config *metdbload.ConnectionConfig) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	connector, err := db.NewConnector(config, logging.NewNullLogger())
	if err != nil {
		t.Fatalf("create connector: %v", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func pingSucceeds(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	err := pool.Ping(context.Background())
	if err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}

func queryVersion(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	var version string
	err := pool.QueryRow(context.Background(), "SELECT version()").Scan(&version)
	if err != nil {
		t.Fatalf("query version: %v", err)
	}
	return version
}

func parseStdConnString(t *testing.T) *metdbload.ConnectionConfig {
	t.Helper()
	config, err := db.ParseConnectionString(stdContainer.ConnString)
	if err != nil {
		t.Fatalf("parse connection string: %v", err)
	}
	return config
}

// loaderConnString is the container's connection string for the restricted role.
func loaderConnString(t *testing.T) string {
	t.Helper()
	config := parseStdConnString(t)
	config.Username = loaderRole
	config.Password = loaderPassword
	config.SSLMode = "disable"
	return db.BuildConnectionString(config)
}
