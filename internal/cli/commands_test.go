package cli

import (
	"errors"
	"strings"
	"testing"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func resetLoadFlags() {
	loadFlags = loadFlagValues{timeout: metdbload.DefaultTimeout}
}

func TestLoadCmd_ArgsValidation(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	exitCode := metdbload.ExitCodeForError(err)
	if exitCode != metdbload.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", metdbload.ExitUsageError, exitCode, err)
	}
}

func TestLoadCmd_ArgsValidation_TooMany(t *testing.T) {
	err := loadCmd.Args(loadCmd, []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error for too many args")
	}
}

func TestLoadCmd_MissingBatchFiles(t *testing.T) {
	clearConnEnv(t)
	resetLoadFlags()
	loadFlags.conn.connection = "postgresql://localhost/postgres"
	loadFlags.conn.database = "mv_test"

	err := runLoad(loadCmd, []string{t.TempDir()})
	if err == nil {
		t.Fatal("Expected error for a directory without batch files")
	}
	if !errors.Is(err, metdbload.ErrBatchNotFound) {
		t.Errorf("Expected ErrBatchNotFound, got: %v", err)
	}
	if code := metdbload.ExitCodeForError(err); code != metdbload.ExitConfigError {
		t.Errorf("Expected exit code %d, got %d", metdbload.ExitConfigError, code)
	}
}

func TestLoadCmd_MissingDatabase(t *testing.T) {
	clearConnEnv(t)
	resetLoadFlags()
	loadFlags.conn.connection = "postgresql://localhost"

	err := runLoad(loadCmd, []string{t.TempDir()})
	if err == nil {
		t.Fatal("Expected error for missing database")
	}
	if !strings.Contains(err.Error(), "database name is required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadCmd_BadLoadSpec(t *testing.T) {
	clearConnEnv(t)
	resetLoadFlags()
	dir := t.TempDir()
	loadFlags.loadSpec = writeFile(t, dir, "load.xml", "<load_spec><connection>")

	err := runLoad(loadCmd, []string{dir})
	if code := metdbload.ExitCodeForError(err); code != metdbload.ExitConfigError {
		t.Errorf("Expected exit code %d, got %d for: %v", metdbload.ExitConfigError, code, err)
	}
}

func TestSchemaCmd_MissingDatabase(t *testing.T) {
	clearConnEnv(t)
	schemaFlags = schemaFlagValues{conn: connectionFlags{connection: "postgresql://localhost"}}

	err := runSchema(schemaCmd, nil)
	if err == nil {
		t.Fatal("Expected error for missing database")
	}
	if !errors.Is(err, metdbload.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got: %v", err)
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	want := map[string]bool{"load": false, "schema": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
