//go:build conntest || azure

package conntest

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/logging"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/internal/services"
	"github.com/vvka-141/metdbload/internal/testing/fixtures"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func newTestLoader(t *testing.T) *services.LoadService {
	t.Helper()
	logger := logging.NewNullLogger()
	factory := func(cfg *metdbload.ConnectionConfig) (metdbload.Connector, error) {
		return db.NewConnector(cfg, logger)
	}
	return services.NewLoadService(factory, schema.Default(), logger)
}

func smokeBatch() batch.Batch {
	return fixtures.NewBatchBuilder().
		AddFile("/data/conntest", "point_stat_000000L.stat", func(f *fixtures.FileBuilder) {
			f.AddLine("CNT", fixtures.Header("CONNTEST"), map[string]float64{"total": 1})
		}).
		Build()
}

// loadSmokeBatch creates dbName with the schema and commits one small batch.
func loadSmokeBatch(t *testing.T, config metdbload.LoadConfig) *metdbload.LoadResult {
	t.Helper()
	ctx := context.Background()
	loader := newTestLoader(t)

	err := loader.ApplySchema(ctx, config, services.SchemaOptions{CreateDatabase: true})
	if err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	result, err := loader.Load(ctx, config, smokeBatch())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	return result
}

func cleanupDB(t *testing.T, connStr, dbName string) {
	t.Helper()
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Logf("cleanup: failed to connect: %v", err)
		return
	}
	defer pool.Close()

	_, _ = pool.Exec(ctx,
		"SELECT pg_terminate_backend(pid) FROM pg_stat_activity WHERE datname = $1 AND pid <> pg_backend_pid()", dbName)
	_, err = pool.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize())
	if err != nil {
		t.Logf("cleanup: failed to drop %s: %v", dbName, err)
	}
}
