package db

import (
	"context"
	"fmt"
	"net"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/retry"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// GoogleCloudSQLConnector connects to Cloud SQL with IAM database authentication.
// Close must be called after the pool is closed to release the dialer.
type GoogleCloudSQLConnector struct {
	config   *metdbload.ConnectionConfig
	logger   metdbload.Logger
	executor *retry.Executor
	dialer   *cloudsqlconn.Dialer
}

// NewGoogleCloudSQLConnector creates a connector for config.GoogleInstance (project:region:instance).
func NewGoogleCloudSQLConnector(config *metdbload.ConnectionConfig, logger metdbload.Logger) *GoogleCloudSQLConnector {
	return &GoogleCloudSQLConnector{config: config, logger: logger, executor: newRetryExecutor(logger)}
}

func (c *GoogleCloudSQLConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Cloud SQL dialer: %w", metdbload.ErrConnectionFailed, err)
	}

	dsn := fmt.Sprintf("host=%s user=%s dbname=%s sslmode=disable",
		c.config.GoogleInstance, c.config.Username, c.config.Database)

	var pool *pgxpool.Pool
	err = c.executor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(dsn)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}
		poolConfig.ConnConfig.DialFunc = func(ctx context.Context, _, _ string) (net.Conn, error) {
			return dialer.Dial(ctx, c.config.GoogleInstance)
		}
		configurePool(poolConfig, c.logger)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.config)
		}
		return nil
	})
	if err != nil {
		dialer.Close()
		return nil, err
	}

	c.dialer = dialer
	return pool, nil
}

// Close releases the Cloud SQL dialer.
func (c *GoogleCloudSQLConnector) Close() error {
	if c.dialer != nil {
		c.dialer.Close()
		c.dialer = nil
	}
	return nil
}
