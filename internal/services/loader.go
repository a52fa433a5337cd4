package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/batch"
	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/metadata"
	"github.com/vvka-141/metdbload/internal/resolve"
	"github.com/vvka-141/metdbload/internal/retry"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/internal/writer"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// ConnectorFactory builds the connector for a parsed connection config.
type ConnectorFactory func(*metdbload.ConnectionConfig) (metdbload.Connector, error)

// LoadService runs load jobs. Each job is one transaction on one connection.
// Thread-Safety: safe for concurrent Load() calls; every call owns its own
// pool, connection, transaction and staging directory.
type LoadService struct {
	connectorFactory ConnectorFactory
	schema           *schema.Schema
	logger           metdbload.Logger
	classifier       *retry.PostgreSQLErrorClassifier
	resolver         *resolve.Resolver
	metadata         *metadata.Writer
	newJobID         func() string
	now              func() time.Time
}

// NewLoadService creates a LoadService with all dependencies injected.
// Panics on nil dependencies: these are wiring mistakes, not runtime conditions.
func NewLoadService(connectorFactory ConnectorFactory, s *schema.Schema, logger metdbload.Logger) *LoadService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if s == nil {
		panic("schema cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &LoadService{
		connectorFactory: connectorFactory,
		schema:           s,
		logger:           logger,
		classifier:       retry.NewPostgreSQLErrorClassifier(),
		resolver:         resolve.New(s, logger),
		metadata:         metadata.NewWriter(s, logger),
		newJobID:         uuid.NewString,
		now:              time.Now,
	}
}

// Load writes b to the database described by config.
//
// All phases share one transaction. On any failure the transaction is rolled
// back and the returned error is a *metdbload.PhaseError naming the phase.
// Staging files are removed on every exit path.
func (s *LoadService) Load(ctx context.Context, config metdbload.LoadConfig, b batch.Batch) (*metdbload.LoadResult, error) {
	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return nil, err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	started := s.now()
	jobID := s.newJobID()
	s.logger.Verbose("Starting load job %s: %d files, %d lines", jobID, b.FileCount(), b.LineCount())

	var staging *writer.Staging
	if config.Flags.LocalInfile {
		staging, err = writer.NewStaging(config.StagingDir, jobID)
		if err != nil {
			return nil, fmt.Errorf("failed to create staging directory: %w", err)
		}
		defer func() {
			if rmErr := staging.Remove(); rmErr != nil {
				s.logger.Warn("Failed to remove staging directory %s: %v", staging.Dir(), rmErr)
			}
		}()
	}

	pool, conn, err := s.connect(ctx, connConfig)
	if err != nil {
		return nil, &metdbload.PhaseError{Phase: metdbload.PhaseConnect, Kind: metdbload.KindTransient, Err: err}
	}
	defer pool.Close()
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return nil, &metdbload.PhaseError{Phase: metdbload.PhaseConnect, Kind: metdbload.KindTransient, Err: fmt.Errorf("failed to begin transaction: %w", err)}
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	job := &loadJob{
		svc:    s,
		config: config,
		host:   connConfig.Host,
		user:   connConfig.Username,
		writer: writer.New(s.schema, s.logger, staging),
	}
	result, err := job.run(ctx, db.NewTxAdapter(tx), b)
	if err != nil {
		s.logger.Error("Load job %s failed, rolling back: %v", jobID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, s.phaseError(metdbload.PhaseCommit, fmt.Errorf("failed to commit: %w", err))
	}
	committed = true

	result.JobID = jobID
	result.Duration = s.now().Sub(started)
	s.logger.Info(">>> Total load time: %v", result.Duration.Round(time.Millisecond))
	return result, nil
}

// validateAndParseConfig validates the configuration and parses the connection string.
func (s *LoadService) validateAndParseConfig(config metdbload.LoadConfig) (*metdbload.ConnectionConfig, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	connConfig.Database = config.DatabaseName
	if connConfig.AppName == "" {
		connConfig.AppName = metdbload.AppName
	}

	connConfig.AuthMethod = config.AuthMethod
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	return connConfig, nil
}

// connect opens a pool and acquires the single connection of the job.
func (s *LoadService) connect(ctx context.Context, connConfig *metdbload.ConnectionConfig) (*pgxpool.Pool, *pgxpool.Conn, error) {
	s.logger.Verbose("Connecting to database '%s'", connConfig.Database)

	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database %q: %w", connConfig.Database, err)
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("failed to acquire connection: %w", err)
	}
	return pool, conn, nil
}

func (s *LoadService) phaseError(phase string, err error) error {
	return &metdbload.PhaseError{Phase: phase, Kind: s.classifier.Kind(err), Err: err}
}
