// Package testinfra starts disposable PostgreSQL servers for integration tests.
package testinfra

import (
	"context"
	"fmt"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	PostgresImage    = "postgres:17-alpine"
	PostgresUser     = "postgres"
	PostgresPassword = "postgres"
	PostgresDB       = "postgres"

	startupTimeout = 60 * time.Second
)

// PostgresContainer is a running server and a connection string to its
// maintenance database.
type PostgresContainer struct {
	*postgres.PostgresContainer
	ConnString string
}

// StartSimplePostgres starts a plain-text server with password authentication.
func StartSimplePostgres(ctx context.Context, opts ...testcontainers.ContainerCustomizer) (*PostgresContainer, error) {
	base := []testcontainers.ContainerCustomizer{
		postgres.WithUsername(PostgresUser),
		postgres.WithPassword(PostgresPassword),
		postgres.WithDatabase(PostgresDB),
		// The server restarts once after init scripts, so wait for the second ready line.
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(startupTimeout),
		),
	}

	ctr, err := postgres.Run(ctx, PostgresImage, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	connStr, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		ctr.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get connection string: %w", err)
	}

	return &PostgresContainer{PostgresContainer: ctr, ConnString: connStr}, nil
}

// StartPostgresWithInitScripts starts a server that runs scripts on first boot.
// Used to provision roles such as a restricted loader account.
func StartPostgresWithInitScripts(ctx context.Context, scripts ...string) (*PostgresContainer, error) {
	return StartSimplePostgres(ctx, postgres.WithInitScripts(scripts...))
}
