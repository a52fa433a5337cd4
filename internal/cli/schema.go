package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/metdbload/internal/db"
	"github.com/vvka-141/metdbload/internal/logging"
	"github.com/vvka-141/metdbload/internal/schema"
	"github.com/vvka-141/metdbload/internal/services"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Create the METdb tables the loader writes to",
	Long: `Schema creates data_file, stat_header, metadata, instance_info and one
table per supported line type. Existing tables are left untouched, so the
command can be run before every load.

Examples:
  # Create tables in an existing database
  metdbload schema -d mv_gfs

  # Create the database first, connecting to 'postgres' to do so
  metdbload schema -d mv_gfs --create-database

  # Print the DDL without connecting
  metdbload schema --print`,
	Args: cobra.NoArgs,
	RunE: runSchema,
}

type schemaFlagValues struct {
	conn           connectionFlags
	createDatabase bool
	maintenanceDB  string
	print          bool
	timeout        time.Duration
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	registerConnectionFlags(schemaCmd, &schemaFlags.conn)

	schemaCmd.Flags().BoolVar(&schemaFlags.createDatabase, "create-database", false,
		"Create the target database when it does not exist")
	schemaCmd.Flags().StringVar(&schemaFlags.maintenanceDB, "maintenance-db", "postgres",
		"Database to connect to for CREATE DATABASE")
	schemaCmd.Flags().BoolVar(&schemaFlags.print, "print", false,
		"Print the DDL to stdout and exit")
	schemaCmd.Flags().DurationVar(&schemaFlags.timeout, "timeout", 5*time.Minute,
		"Upper bound for the whole command")
}

func runSchema(cmd *cobra.Command, args []string) error {
	verbose := getVerboseFlag(cmd)
	s := schema.Default()

	if schemaFlags.print {
		for _, stmt := range s.DDL() {
			fmt.Fprintf(os.Stdout, "%s;\n\n", stmt)
		}
		return nil
	}

	jobConfig, err := loadJobConfig("", "")
	if err != nil {
		return err
	}
	connConfig, err := resolveConnection(&schemaFlags.conn, jobConfig)
	if err != nil {
		return err
	}
	targetDB, err := resolveTargetDatabase(schemaFlags.conn.database, connConfig.Database, "schema", verbose)
	if err != nil {
		return err
	}
	connConfig.Database = targetDB
	if verbose {
		logConnectionVerbose(connConfig)
	}

	config := metdbload.LoadConfig{
		ConnectionString:  db.BuildConnectionString(connConfig),
		DatabaseName:      targetDB,
		Group:             metdbload.DefaultDatabaseGroup,
		Timeout:           schemaFlags.timeout,
		Verbose:           verbose,
		AuthMethod:        connConfig.AuthMethod,
		AzureTenantID:     connConfig.AzureTenantID,
		AzureClientID:     connConfig.AzureClientID,
		AzureClientSecret: connConfig.AzureClientSecret,
		AWSRegion:         connConfig.AWSRegion,
		GoogleInstance:    connConfig.GoogleInstance,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	logger := logging.NewConsoleLogger(verbose)
	svc := services.NewLoadService(connectorFactory(logger), s, logger)
	err = svc.ApplySchema(ctx, config, services.SchemaOptions{
		CreateDatabase:      schemaFlags.createDatabase,
		MaintenanceDatabase: schemaFlags.maintenanceDB,
	})
	if err != nil {
		return fmt.Errorf("schema failed: %w", err)
	}

	if verbose {
		for _, table := range services.SchemaTables(s) {
			logger.Verbose("  %s", table)
		}
	}
	return nil
}
