package db

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vvka-141/metdbload/internal/config"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// GranularConnFlags are the libpq-style CLI flags (-h, -p, -U, -d).
// There is no password flag; use $PGPASSWORD, ~/.pgpass or a connection string.
type GranularConnFlags struct {
	Host     string
	Port     int
	Username string
	Database string
	SSLMode  string
}

// IsEmpty reports whether no server flag was given. Database is excluded
// because it may override the database of a connection string.
func (g *GranularConnFlags) IsEmpty() bool {
	return g.Host == "" && g.Port == 0 && g.Username == "" && g.SSLMode == ""
}

// CloudFlags select and configure cloud IAM authentication.
type CloudFlags struct {
	AuthMethod     string
	AzureTenantID  string
	AzureClientID  string
	AWSRegion      string
	GoogleInstance string
}

// EnvVars holds the PostgreSQL and cloud SDK environment variables.
// See: https://www.postgresql.org/docs/current/libpq-envars.html
type EnvVars struct {
	PGHOST       string
	PGPORT       string
	PGUSER       string
	PGPASSWORD   string
	PGDATABASE   string
	PGSSLMODE    string
	DATABASE_URL string

	AZURE_TENANT_ID     string
	AZURE_CLIENT_ID     string
	AZURE_CLIENT_SECRET string
	AWS_REGION          string
}

// LoadFromEnvironment reads EnvVars from the process environment.
func LoadFromEnvironment() *EnvVars {
	return &EnvVars{
		PGHOST:              os.Getenv("PGHOST"),
		PGPORT:              os.Getenv("PGPORT"),
		PGUSER:              os.Getenv("PGUSER"),
		PGPASSWORD:          os.Getenv("PGPASSWORD"),
		PGDATABASE:          os.Getenv("PGDATABASE"),
		PGSSLMODE:           os.Getenv("PGSSLMODE"),
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		AZURE_TENANT_ID:     os.Getenv("AZURE_TENANT_ID"),
		AZURE_CLIENT_ID:     os.Getenv("AZURE_CLIENT_ID"),
		AZURE_CLIENT_SECRET: os.Getenv("AZURE_CLIENT_SECRET"),
		AWS_REGION:          os.Getenv("AWS_REGION"),
	}
}

// ParseAuthMethod maps a config or flag value to an AuthMethod. Empty means standard.
func ParseAuthMethod(s string) (metdbload.AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return metdbload.AuthMethodStandard, nil
	case "aws", "aws-iam":
		return metdbload.AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return metdbload.AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return metdbload.AuthMethodAzureEntraID, nil
	}
	return 0, fmt.Errorf("auth method %q: %w", s, metdbload.ErrUnsupportedAuthMethod)
}

// ResolveConnectionParams builds the connection config with libpq precedence:
//
//  1. --connection string, or DATABASE_URL when no server flag is given
//  2. otherwise each parameter from flag > PG* env var > metdbload.yaml > default
//
// The -d flag overrides the database of a connection string. Giving both a
// connection string and server flags is an error.
func ResolveConnectionParams(
	connStringFlag string,
	granular *GranularConnFlags,
	cloud *CloudFlags,
	env *EnvVars,
	jobConfig *config.JobConfig,
) (*metdbload.ConnectionConfig, error) {
	if granular == nil {
		granular = &GranularConnFlags{}
	}
	if cloud == nil {
		cloud = &CloudFlags{}
	}
	if env == nil {
		env = &EnvVars{}
	}
	var yc config.ConnectionConfig
	if jobConfig != nil {
		yc = jobConfig.Connection
	}

	if connStringFlag != "" && !granular.IsEmpty() {
		return nil, fmt.Errorf("cannot specify both --connection and granular flags (-h, -p, -U, --sslmode): %w", metdbload.ErrInvalidConfig)
	}

	var (
		cfg *metdbload.ConnectionConfig
		err error
	)
	switch {
	case connStringFlag != "":
		cfg, err = fromConnectionString(connStringFlag, env)
	case granular.IsEmpty() && env.DATABASE_URL != "":
		cfg, err = fromConnectionString(env.DATABASE_URL, env)
	default:
		cfg, err = fromGranular(granular, env, yc)
	}
	if err != nil {
		return nil, err
	}
	if granular.Database != "" {
		cfg.Database = granular.Database
	}
	if cfg.AppName == "" {
		cfg.AppName = metdbload.AppName
	}

	if err := applyAuth(cfg, cloud, env, yc); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromConnectionString(connStr string, env *EnvVars) (*metdbload.ConnectionConfig, error) {
	cfg, err := ParseConnectionString(connStr)
	if err != nil {
		return nil, fmt.Errorf("invalid connection string: %w: %w", metdbload.ErrInvalidConfig, err)
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = firstNonEmpty(env.PGSSLMODE, "prefer")
	}
	if cfg.Password == "" {
		cfg.Password = env.PGPASSWORD
	}
	return cfg, nil
}

func fromGranular(flags *GranularConnFlags, env *EnvVars, yc config.ConnectionConfig) (*metdbload.ConnectionConfig, error) {
	cfg := &metdbload.ConnectionConfig{
		Host:             firstNonEmpty(flags.Host, env.PGHOST, yc.Host, "localhost"),
		Username:         firstNonEmpty(flags.Username, env.PGUSER, yc.Username, os.Getenv("USER"), os.Getenv("USERNAME")),
		Password:         env.PGPASSWORD,
		Database:         firstNonEmpty(flags.Database, env.PGDATABASE, yc.Database),
		SSLMode:          firstNonEmpty(flags.SSLMode, env.PGSSLMODE, yc.SSLMode, "prefer"),
		AuthMethod:       metdbload.AuthMethodStandard,
		AdditionalParams: make(map[string]string),
	}

	switch {
	case flags.Port != 0:
		cfg.Port = flags.Port
	case env.PGPORT != "":
		port, err := strconv.Atoi(env.PGPORT)
		if err != nil || port <= 0 || port > 65535 {
			return nil, fmt.Errorf("invalid $PGPORT value '%s': must be a port number: %w", env.PGPORT, metdbload.ErrInvalidConfig)
		}
		cfg.Port = port
	case yc.Port != 0:
		cfg.Port = yc.Port
	default:
		cfg.Port = 5432
	}
	return cfg, nil
}

// applyAuth selects the auth method: flag > metdbload.yaml > Azure env vars > standard.
func applyAuth(cfg *metdbload.ConnectionConfig, cloud *CloudFlags, env *EnvVars, yc config.ConnectionConfig) error {
	method, err := ParseAuthMethod(firstNonEmpty(cloud.AuthMethod, yc.AuthMethod))
	if err != nil {
		return err
	}

	tenantID := firstNonEmpty(cloud.AzureTenantID, yc.AzureTenantID, env.AZURE_TENANT_ID)
	clientID := firstNonEmpty(cloud.AzureClientID, yc.AzureClientID, env.AZURE_CLIENT_ID)
	if method == metdbload.AuthMethodStandard && cloud.AuthMethod == "" && yc.AuthMethod == "" &&
		(env.AZURE_TENANT_ID != "" || env.AZURE_CLIENT_ID != "") {
		method = metdbload.AuthMethodAzureEntraID
	}

	cfg.AuthMethod = method
	switch method {
	case metdbload.AuthMethodAzureEntraID:
		cfg.AzureTenantID = tenantID
		cfg.AzureClientID = clientID
		cfg.AzureClientSecret = env.AZURE_CLIENT_SECRET
	case metdbload.AuthMethodAWSIAM:
		cfg.AWSRegion = firstNonEmpty(cloud.AWSRegion, yc.AWSRegion, env.AWS_REGION)
	case metdbload.AuthMethodGoogleIAM:
		cfg.GoogleInstance = firstNonEmpty(cloud.GoogleInstance, yc.GoogleInstance)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
