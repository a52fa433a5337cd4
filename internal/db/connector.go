package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/retry"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// A load job holds one connection for its whole transaction.
const (
	DefaultMaxConns        = 2
	DefaultMinConns        = 1
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config, logger metdbload.Logger) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
	if poolConfig.ConnConfig.RuntimeParams["application_name"] == "" {
		poolConfig.ConnConfig.RuntimeParams["application_name"] = metdbload.AppName
	}
	poolConfig.ConnConfig.OnNotice = func(_ *pgconn.PgConn, notice *pgconn.Notice) {
		logger.Verbose("server %s: %s", strings.ToLower(notice.Severity), notice.Message)
	}
}

func newRetryExecutor(logger metdbload.Logger) *retry.Executor {
	strategy := retry.NewExponentialBackoff(metdbload.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(metdbload.DefaultRetryInitialDelay),
		retry.WithMaxDelay(metdbload.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(retry.NewPostgreSQLErrorClassifier(), strategy).
		WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("Connection attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
		})
}

// openPool parses connStr, applies the pool settings and pings the server.
func openPool(ctx context.Context, connStr string, cfg *metdbload.ConnectionConfig, logger metdbload.Logger) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection config: %w", err)
	}
	configurePool(poolConfig, logger)

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, wrapConnectionError(err, cfg)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrapConnectionError(err, cfg)
	}
	return pool, nil
}

// StandardConnector connects with username/password, retrying transient failures.
type StandardConnector struct {
	config   *metdbload.ConnectionConfig
	logger   metdbload.Logger
	executor *retry.Executor
}

// NewStandardConnector creates a StandardConnector.
func NewStandardConnector(config *metdbload.ConnectionConfig, logger metdbload.Logger) *StandardConnector {
	return &StandardConnector{config: config, logger: logger, executor: newRetryExecutor(logger)}
}

func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		var err error
		pool, err = openPool(ctx, BuildConnectionString(c.config), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// NewConnector creates the Connector matching config.AuthMethod.
func NewConnector(config *metdbload.ConnectionConfig, logger metdbload.Logger) (metdbload.Connector, error) {
	if logger == nil {
		panic("logger cannot be nil")
	}
	switch config.AuthMethod {
	case metdbload.AuthMethodStandard:
		return NewStandardConnector(config, logger), nil
	case metdbload.AuthMethodAWSIAM:
		provider, err := NewAWSIAMTokenProvider(fmt.Sprintf("%s:%d", config.Host, config.Port), config.AWSRegion, config.Username)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", metdbload.ErrInvalidConfig, err)
		}
		return NewTokenBasedConnector(config, provider, "AWS IAM", logger), nil
	case metdbload.AuthMethodGoogleIAM:
		if config.GoogleInstance == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires --google-instance (project:region:instance): %w", metdbload.ErrInvalidConfig)
		}
		if config.Username == "" {
			return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username: %w", metdbload.ErrInvalidConfig)
		}
		return NewGoogleCloudSQLConnector(config, logger), nil
	case metdbload.AuthMethodAzureEntraID:
		provider, err := newAzureProvider(config)
		if err != nil {
			return nil, err
		}
		return NewTokenBasedConnector(config, provider, "Azure", logger), nil
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, metdbload.ErrUnsupportedAuthMethod)
	}
}

func newAzureProvider(config *metdbload.ConnectionConfig) (TokenProvider, error) {
	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		return NewAzureServicePrincipalProvider(config.AzureTenantID, config.AzureClientID, config.AzureClientSecret)
	}
	return NewAzureDefaultCredentialProvider()
}

// wrapConnectionError marks err as ErrConnectionFailed and adds a hint for common causes.
func wrapConnectionError(err error, cfg *metdbload.ConnectionConfig) error {
	msg := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var hint string
	switch {
	case strings.Contains(msg, "connection refused"), strings.Contains(msg, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s; check that PostgreSQL is running (pg_isready -h %s -p %d)", addr, cfg.Host, cfg.Port)
	case strings.Contains(msg, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q", cfg.Host)
	case strings.Contains(msg, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for user %q; check $PGPASSWORD or ~/.pgpass", cfg.Username)
	case strings.Contains(msg, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist; create it and run `metdbload schema` first", cfg.Database)
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		hint = fmt.Sprintf("connection to %s timed out", addr)
	case strings.Contains(msg, "ssl"), strings.Contains(msg, "tls"):
		hint = "SSL/TLS negotiation failed; check --sslmode"
	default:
		hint = "failed to connect to database"
	}
	return fmt.Errorf("%w: %s: %w", metdbload.ErrConnectionFailed, hint, err)
}
