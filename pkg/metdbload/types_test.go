package metdbload_test

import (
	"errors"
	"testing"
	"time"

	"github.com/vvka-141/metdbload/pkg/metdbload"
)

func TestLoadConfig_Validate(t *testing.T) {
	valid := func() metdbload.LoadConfig {
		return metdbload.LoadConfig{
			ConnectionString: "postgresql://localhost:5432/postgres",
			DatabaseName:     "mv_gfs",
			Group:            metdbload.DefaultDatabaseGroup,
		}
	}

	tests := []struct {
		name      string
		mutate    func(*metdbload.LoadConfig)
		wantError bool
		errorType error
	}{
		{name: "valid config", mutate: func(*metdbload.LoadConfig) {}},
		{
			name:   "valid config with flags and timeout",
			mutate: func(c *metdbload.LoadConfig) { c.Flags.ForceDupFile = true; c.Timeout = time.Minute },
		},
		{
			name:      "missing connection string",
			mutate:    func(c *metdbload.LoadConfig) { c.ConnectionString = "" },
			wantError: true,
			errorType: metdbload.ErrInvalidConfig,
		},
		{
			name:      "missing database",
			mutate:    func(c *metdbload.LoadConfig) { c.DatabaseName = "" },
			wantError: true,
			errorType: metdbload.ErrInvalidConfig,
		},
		{
			name:      "missing group",
			mutate:    func(c *metdbload.LoadConfig) { c.Group = "" },
			wantError: true,
			errorType: metdbload.ErrInvalidConfig,
		},
		{
			name:      "negative timeout",
			mutate:    func(c *metdbload.LoadConfig) { c.Timeout = -time.Second },
			wantError: true,
			errorType: metdbload.ErrInvalidConfig,
		},
		{
			name:      "unknown auth method",
			mutate:    func(c *metdbload.LoadConfig) { c.AuthMethod = metdbload.AuthMethod(42) },
			wantError: true,
			errorType: metdbload.ErrUnsupportedAuthMethod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Fatalf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
			if tt.errorType != nil && !errors.Is(err, tt.errorType) {
				t.Errorf("Validate() error = %v, want %v", err, tt.errorType)
			}
		})
	}
}

func TestLoadConfig_Validate_JoinsErrors(t *testing.T) {
	err := (&metdbload.LoadConfig{}).Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	joined, ok := err.(interface{ Unwrap() []error })
	if !ok {
		t.Fatalf("expected a joined error, got %T", err)
	}
	if n := len(joined.Unwrap()); n != 3 {
		t.Errorf("expected 3 errors, got %d: %v", n, err)
	}
}

func TestAuthMethod(t *testing.T) {
	if metdbload.AuthMethodAzureEntraID.String() != "Azure Entra ID" {
		t.Errorf("String() = %q", metdbload.AuthMethodAzureEntraID.String())
	}
	if metdbload.AuthMethod(-1).IsValid() {
		t.Error("negative auth method should be invalid")
	}
}

func TestLoadResult_TotalLines(t *testing.T) {
	r := &metdbload.LoadResult{LinesWritten: map[string]int{"CNT": 3, "SL1L2": 4}}
	if r.TotalLines() != 7 {
		t.Errorf("TotalLines() = %d, want 7", r.TotalLines())
	}
	if (&metdbload.LoadResult{}).TotalLines() != 0 {
		t.Error("empty result should have no lines")
	}
}

func TestMetadataAction_String(t *testing.T) {
	for action, want := range map[metdbload.MetadataAction]string{
		metdbload.MetadataSkipped:   "skipped",
		metdbload.MetadataInserted:  "inserted",
		metdbload.MetadataUpdated:   "updated",
		metdbload.MetadataUnchanged: "unchanged",
	} {
		if got := action.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", action, got, want)
		}
	}
}
