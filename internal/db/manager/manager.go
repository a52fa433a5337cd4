package manager

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	queryDatabaseExists       = "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)"
	queryTerminateConnections = `
		SELECT pg_terminate_backend(pid)
		FROM pg_stat_activity
		WHERE datname = $1 AND pid <> pg_backend_pid()
	`
)

// Conn is the maintenance connection surface. *pgxpool.Pool and *pgx.Conn satisfy it.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Manager runs database lifecycle statements. Stateless and safe for concurrent use.
type Manager struct{}

// New creates a Manager.
func New() *Manager {
	return &Manager{}
}

// Exists checks if a database exists.
func (m *Manager) Exists(ctx context.Context, conn Conn, dbName string) (bool, error) {
	var exists bool
	if err := conn.QueryRow(ctx, queryDatabaseExists, dbName).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check database existence: %w", err)
	}
	return exists, nil
}

// Create creates a new database.
func (m *Manager) Create(ctx context.Context, conn Conn, dbName string) error {
	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database %q: %w", dbName, err)
	}
	return nil
}

// EnsureExists creates dbName when it is missing and reports whether it did.
func (m *Manager) EnsureExists(ctx context.Context, conn Conn, dbName string) (bool, error) {
	exists, err := m.Exists(ctx, conn, dbName)
	if err != nil || exists {
		return false, err
	}
	if err := m.Create(ctx, conn, dbName); err != nil {
		return false, err
	}
	return true, nil
}

// DropIfExists drops dbName if it exists.
func (m *Manager) DropIfExists(ctx context.Context, conn Conn, dbName string) error {
	if _, err := conn.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return fmt.Errorf("failed to drop database %q: %w", dbName, err)
	}
	return nil
}

// TerminateConnections terminates all other connections to dbName.
func (m *Manager) TerminateConnections(ctx context.Context, conn Conn, dbName string) error {
	if _, err := conn.Exec(ctx, queryTerminateConnections, dbName); err != nil {
		return fmt.Errorf("failed to terminate connections to database %q: %w", dbName, err)
	}
	return nil
}
