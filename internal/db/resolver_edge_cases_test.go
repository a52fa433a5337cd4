package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func TestResolveConnectionParams_PartialEnvVars(t *testing.T) {
	tests := []struct {
		name     string
		env      *EnvVars
		wantHost string
		wantPort int
		wantUser string
	}{
		{"only PGHOST", &EnvVars{PGHOST: "customhost"}, "customhost", 5432, ""},
		{"only PGPORT", &EnvVars{PGPORT: "5433"}, "localhost", 5433, ""},
		{"only PGUSER", &EnvVars{PGUSER: "customuser"}, "localhost", 5432, "customuser"},
		{"PGHOST and PGPORT", &EnvVars{PGHOST: "dbserver", PGPORT: "5434"}, "dbserver", 5434, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConnectionParams("", &GranularConnFlags{}, nil, tt.env, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHost, cfg.Host)
			assert.Equal(t, tt.wantPort, cfg.Port)
			if tt.wantUser != "" {
				assert.Equal(t, tt.wantUser, cfg.Username)
			}
		})
	}
}

func TestResolveConnectionParams_SSLModePrecedence(t *testing.T) {
	tests := []struct {
		name    string
		connStr string
		flags   *GranularConnFlags
		env     *EnvVars
		want    string
	}{
		{"flag overrides env", "", &GranularConnFlags{SSLMode: "require"}, &EnvVars{PGSSLMODE: "disable"}, "require"},
		{"env when no flag", "", &GranularConnFlags{}, &EnvVars{PGSSLMODE: "verify-full"}, "verify-full"},
		{"default when neither set", "", &GranularConnFlags{}, &EnvVars{}, "prefer"},
		{"connection string beats env", "postgresql://h/db?sslmode=disable", nil, &EnvVars{PGSSLMODE: "require"}, "disable"},
		{"env fills connection string", "postgresql://h/db", nil, &EnvVars{PGSSLMODE: "require"}, "require"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConnectionParams(tt.connStr, tt.flags, nil, tt.env, nil)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.SSLMode)
		})
	}
}

func TestResolveConnectionParams_DatabaseURL_Precedence(t *testing.T) {
	env := &EnvVars{DATABASE_URL: "postgresql://urluser@urlhost:5433/urldb"}

	t.Run("DATABASE_URL used when nothing else given", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "urlhost", cfg.Host)
		assert.Equal(t, 5433, cfg.Port)
		assert.Equal(t, "urluser", cfg.Username)
	})

	t.Run("connection string beats DATABASE_URL", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("postgresql://flaguser@flaghost/flagdb", nil, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "flaghost", cfg.Host)
		assert.Equal(t, "flagdb", cfg.Database)
	})

	t.Run("granular flags beat DATABASE_URL", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "granhost"}, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "granhost", cfg.Host)
		assert.Equal(t, 5432, cfg.Port)
	})

	t.Run("database flag alone keeps DATABASE_URL", func(t *testing.T) {
		cfg, err := ResolveConnectionParams("", &GranularConnFlags{Database: "other"}, nil, env, nil)
		require.NoError(t, err)
		assert.Equal(t, "urlhost", cfg.Host)
		assert.Equal(t, "other", cfg.Database)
	})
}

func TestResolveConnectionParams_EmptyDatabaseInConnectionString(t *testing.T) {
	cfg, err := ResolveConnectionParams("postgresql://met@db:5432/", nil, nil, &EnvVars{PGDATABASE: "ignored"}, nil)
	require.NoError(t, err)
	assert.Empty(t, cfg.Database, "PGDATABASE does not fill a connection string")
}

func TestResolveConnectionParams_PGPORTEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		pgport   string
		wantPort int
		wantErr  bool
	}{
		{"valid port", "5433", 5433, false},
		{"empty uses default", "", 5432, false},
		{"non-numeric", "abc", 0, true},
		{"negative", "-1", 0, true},
		{"zero", "0", 0, true},
		{"too large", "70000", 0, true},
		{"with spaces", " 5432 ", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ResolveConnectionParams("", nil, nil, &EnvVars{PGPORT: tt.pgport}, nil)
			if tt.wantErr {
				assert.ErrorIs(t, err, metdbload.ErrInvalidConfig)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPort, cfg.Port)
		})
	}
}

func TestResolveConnectionParams_PasswordFromEnvOnly(t *testing.T) {
	env := &EnvVars{PGPASSWORD: "envpass"}

	cfg, err := ResolveConnectionParams("", &GranularConnFlags{Host: "h"}, nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "envpass", cfg.Password)

	cfg, err = ResolveConnectionParams("postgresql://met:urlpass@h/db", nil, nil, env, nil)
	require.NoError(t, err)
	assert.Equal(t, "urlpass", cfg.Password, "connection string password wins")
}
