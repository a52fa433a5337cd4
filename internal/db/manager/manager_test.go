package manager_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/metdbload/internal/db/manager"
)

type mockConn struct {
	execFunc     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	queryRowFunc func(ctx context.Context, sql string, args ...any) pgx.Row
	execs        []string
}

func (m *mockConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	m.execs = append(m.execs, sql)
	if m.execFunc != nil {
		return m.execFunc(ctx, sql, args...)
	}
	return pgconn.CommandTag{}, nil
}

func (m *mockConn) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFunc != nil {
		return m.queryRowFunc(ctx, sql, args...)
	}
	return existsRow(false)
}

type mockRow struct {
	scanFunc func(dest ...any) error
}

func (m mockRow) Scan(dest ...any) error { return m.scanFunc(dest...) }

func existsRow(v bool) pgx.Row {
	return mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*bool) = v
		return nil
	}}
}

func TestManager_Create_QuotesName(t *testing.T) {
	tests := []struct {
		dbName string
		want   string
	}{
		{"mv_gfs", `CREATE DATABASE "mv_gfs"`},
		{"my database", `CREATE DATABASE "my database"`},
		{`my"database`, `CREATE DATABASE "my""database"`},
		{"my;database", `CREATE DATABASE "my;database"`},
	}
	for _, tt := range tests {
		t.Run(tt.dbName, func(t *testing.T) {
			conn := &mockConn{}
			require.NoError(t, manager.New().Create(context.Background(), conn, tt.dbName))
			assert.Equal(t, []string{tt.want}, conn.execs)
		})
	}
}

func TestManager_Exists(t *testing.T) {
	var gotArgs []any
	conn := &mockConn{queryRowFunc: func(_ context.Context, _ string, args ...any) pgx.Row {
		gotArgs = args
		return existsRow(true)
	}}

	exists, err := manager.New().Exists(context.Background(), conn, "mv_gfs")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []any{"mv_gfs"}, gotArgs)
}

func TestManager_Exists_Error(t *testing.T) {
	conn := &mockConn{queryRowFunc: func(context.Context, string, ...any) pgx.Row {
		return mockRow{scanFunc: func(...any) error { return errors.New("permission denied") }}
	}}

	_, err := manager.New().Exists(context.Background(), conn, "mv_gfs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check database existence")
}

func TestManager_EnsureExists(t *testing.T) {
	t.Run("creates missing database", func(t *testing.T) {
		conn := &mockConn{queryRowFunc: func(context.Context, string, ...any) pgx.Row { return existsRow(false) }}
		created, err := manager.New().EnsureExists(context.Background(), conn, "mv_gfs")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, []string{`CREATE DATABASE "mv_gfs"`}, conn.execs)
	})

	t.Run("leaves existing database alone", func(t *testing.T) {
		conn := &mockConn{queryRowFunc: func(context.Context, string, ...any) pgx.Row { return existsRow(true) }}
		created, err := manager.New().EnsureExists(context.Background(), conn, "mv_gfs")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Empty(t, conn.execs)
	})

	t.Run("create failure", func(t *testing.T) {
		conn := &mockConn{execFunc: func(context.Context, string, ...any) (pgconn.CommandTag, error) {
			return pgconn.CommandTag{}, errors.New("must be owner")
		}}
		_, err := manager.New().EnsureExists(context.Background(), conn, "mv_gfs")
		require.Error(t, err)
		assert.Contains(t, err.Error(), `failed to create database "mv_gfs"`)
	})
}

func TestManager_DropIfExists(t *testing.T) {
	conn := &mockConn{}
	require.NoError(t, manager.New().DropIfExists(context.Background(), conn, "mv gfs"))
	assert.Equal(t, []string{`DROP DATABASE IF EXISTS "mv gfs"`}, conn.execs)
}

func TestManager_TerminateConnections(t *testing.T) {
	var gotArgs []any
	conn := &mockConn{execFunc: func(_ context.Context, _ string, args ...any) (pgconn.CommandTag, error) {
		gotArgs = args
		return pgconn.CommandTag{}, nil
	}}

	require.NoError(t, manager.New().TerminateConnections(context.Background(), conn, "mv_gfs"))
	assert.Equal(t, []any{"mv_gfs"}, gotArgs)
	assert.Contains(t, conn.execs[0], "pg_terminate_backend")
}
