//go:build conntest

package conntest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/metdbload/internal/config"
	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/logging"
)

func TestPrecedence_FlagOverridesEnv(t *testing.T) {
	cfg := parseStdConnString(t)

	t.Setenv("PGPASSWORD", "wrong-password-from-env")

	flagConfig := &db.GranularConnFlags{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Username: cfg.Username,
	}

	resolved, err := db.ResolveConnectionParams("", flagConfig, nil, db.LoadFromEnvironment(), nil)
	require.NoError(t, err)

	assert.Equal(t, "wrong-password-from-env", resolved.Password)

	resolved.Password = cfg.Password
	resolved.Database = cfg.Database
	resolved.SSLMode = "disable"

	pool := connectWithConfig(t, resolved)
	pingSucceeds(t, pool)
}

func TestPrecedence_EnvFallback(t *testing.T) {
	cfg := parseStdConnString(t)

	t.Setenv("PGHOST", cfg.Host)
	t.Setenv("PGUSER", cfg.Username)
	t.Setenv("PGPASSWORD", cfg.Password)
	t.Setenv("PGSSLMODE", "disable")

	resolved, err := db.ResolveConnectionParams(
		"",
		&db.GranularConnFlags{Port: cfg.Port},
		nil,
		db.LoadFromEnvironment(),
		nil,
	)
	require.NoError(t, err)

	assert.Equal(t, cfg.Host, resolved.Host)
	assert.Equal(t, cfg.Username, resolved.Username)

	resolved.Database = cfg.Database

	connector, err := db.NewConnector(resolved, logging.NewNullLogger())
	require.NoError(t, err)

	pool, err := connector.Connect(context.Background())
	require.NoError(t, err)
	defer pool.Close()

	pingSucceeds(t, pool)
}

func TestPrecedence_ConfigFileFallback(t *testing.T) {
	cfg := parseStdConnString(t)

	jobConfig := &config.JobConfig{
		Connection: config.ConnectionConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Database: cfg.Database,
			SSLMode:  "disable",
		},
	}

	resolved, err := db.ResolveConnectionParams("", nil, nil, &db.EnvVars{PGPASSWORD: cfg.Password}, jobConfig)
	require.NoError(t, err)
	assert.Equal(t, cfg.Port, resolved.Port)

	pool := connectWithConfig(t, resolved)
	pingSucceeds(t, pool)
}
