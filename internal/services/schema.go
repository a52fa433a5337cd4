package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/db/manager"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// SchemaOptions controls ApplySchema.
type SchemaOptions struct {
	// CreateDatabase creates the target database first when it is missing,
	// connecting to MaintenanceDatabase to do so.
	CreateDatabase      bool
	MaintenanceDatabase string
}

// ApplySchema creates every table the loader writes to. Existing tables are kept.
func (s *LoadService) ApplySchema(ctx context.Context, config metdbload.LoadConfig, opts SchemaOptions) error {
	connConfig, err := s.validateAndParseConfig(config)
	if err != nil {
		return err
	}

	if opts.CreateDatabase {
		if err := s.ensureDatabase(ctx, connConfig, opts.MaintenanceDatabase); err != nil {
			return err
		}
	}

	pool, conn, err := s.connect(ctx, connConfig)
	if err != nil {
		return err
	}
	defer pool.Close()
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			s.logger.Error("Rollback failed: %v", rbErr)
		}
	}()

	q := db.NewTxAdapter(tx)
	for _, stmt := range s.schema.DDL() {
		if _, err := q.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("%w: failed to apply schema: %w", metdbload.ErrLoadFailed, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: failed to commit schema: %w", metdbload.ErrLoadFailed, err)
	}

	s.logger.Info("✓ Schema ready in database '%s' (%d line types)", connConfig.Database, len(s.schema.LineTypes()))
	return nil
}

func (s *LoadService) ensureDatabase(ctx context.Context, connConfig *metdbload.ConnectionConfig, maintenanceDB string) error {
	if maintenanceDB == "" {
		maintenanceDB = "postgres"
	}
	mgmtConfig := *connConfig
	mgmtConfig.Database = maintenanceDB

	pool, conn, err := s.connect(ctx, &mgmtConfig)
	if err != nil {
		return err
	}
	defer pool.Close()
	defer conn.Release()

	created, err := manager.New().EnsureExists(ctx, conn, connConfig.Database)
	if err != nil {
		return err
	}
	if created {
		s.logger.Info("✓ Created database '%s'", connConfig.Database)
	} else {
		s.logger.Verbose("Database '%s' already exists", connConfig.Database)
	}
	return nil
}

// SchemaTables lists the tables ApplySchema creates, in creation order.
func SchemaTables(s *schema.Schema) []string {
	tables := []string{schema.DataFileTable, schema.StatHeaderTable, schema.MetadataTable, schema.InstanceInfoTable}
	for _, lt := range s.LineTypes() {
		tables = append(tables, lt.Table)
	}
	return tables
}
