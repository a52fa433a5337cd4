package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/metdbload/internal/config"
	"github.com/vvka-141/metdbload/internal/metadata"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// loadJobConfig loads .env and the job configuration. An explicit path must
// exist; otherwise metdbload.yaml in batchDir is optional.
func loadJobConfig(batchDir, explicitPath string) (*config.JobConfig, error) {
	_ = godotenv.Load()

	if explicitPath != "" {
		cfg, err := config.LoadFile(explicitPath)
		if err != nil {
			if errors.Is(err, config.ErrConfigNotFound) {
				return nil, fmt.Errorf("config file %s: %w: %w", explicitPath, config.ErrConfigNotFound, metdbload.ErrInvalidConfig)
			}
			return nil, fmt.Errorf("%w: %w", metdbload.ErrInvalidConfig, err)
		}
		return cfg, nil
	}

	if batchDir == "" {
		return nil, nil
	}
	cfg, err := config.Load(batchDir)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load %s: %w: %w", config.ConfigFileName, metdbload.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// readLoadSpec parses a load spec XML file. The raw document is returned so it
// can be stored verbatim as the instance_info payload.
func readLoadSpec(path string) (*metadata.LoadSpec, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read load spec %s: %w: %w", path, metdbload.ErrInvalidConfig, err)
	}
	spec, err := metadata.ParseLoadSpec(data)
	if err != nil {
		return nil, "", fmt.Errorf("load spec %s: %w", path, err)
	}
	return spec, string(data), nil
}

// applySpecConnection fills unset connection flags from a load spec.
// Nothing is copied when a connection string is in use.
func applySpecConnection(f *connectionFlags, spec *metadata.LoadSpec) error {
	if spec == nil {
		return nil
	}
	if f.database == "" {
		f.database = spec.Connection.Database
	}
	if f.connection != "" || connectionStringFromEnv() != "" {
		return nil
	}

	host, port, err := spec.Connection.HostPort()
	if err != nil {
		return err
	}
	if f.host == "" {
		f.host = host
	}
	if f.port == 0 {
		f.port = port
	}
	if f.username == "" {
		f.username = spec.Connection.User
	}
	return nil
}

// flagSources are the layers a load flag can come from, lowest priority first.
type flagSources struct {
	file *config.FlagsConfig
	spec *metadata.LoadSpec
}

// mergeLoadFlags resolves the load flags. Precedence: CLI flag > load spec >
// metdbload.yaml > false.
func mergeLoadFlags(cmd *cobra.Command, cli metdbload.LoadFlags, src flagSources) metdbload.LoadFlags {
	var out metdbload.LoadFlags
	if src.file != nil {
		out.ForceDupFile = deref(src.file.ForceDupFile)
		out.StatHeaderDBCheck = deref(src.file.StatHeaderDBCheck)
		out.LoadXML = deref(src.file.LoadXML)
		out.LocalInfile = deref(src.file.LocalInfile)
	}
	if src.spec != nil {
		out = src.spec.Flags()
	}

	changed := cmd.Flags().Changed
	if changed("force-dup-file") {
		out.ForceDupFile = cli.ForceDupFile
	}
	if changed("stat-header-db-check") {
		out.StatHeaderDBCheck = cli.StatHeaderDBCheck
	}
	if changed("load-xml") {
		out.LoadXML = cli.LoadXML
	}
	if changed("local-infile") {
		out.LocalInfile = cli.LocalInfile
	}
	return out
}

func deref(b *bool) bool {
	return b != nil && *b
}

// resolveEffectiveTimeout returns the effective timeout, preferring metdbload.yaml if the flag wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, jobConfig *config.JobConfig, flagTimeout time.Duration) (time.Duration, error) {
	if jobConfig != nil && !cmd.Flags().Changed("timeout") {
		d, err := jobConfig.TimeoutDuration()
		if err != nil {
			return 0, fmt.Errorf("%w: %w", metdbload.ErrInvalidConfig, err)
		}
		if d > 0 {
			return d, nil
		}
	}
	return flagTimeout, nil
}

// firstSet returns the first non-empty value.
func firstSet(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
