package metdbload

import (
	"errors"
	"fmt"
	"time"
)

// LoadFlags are the switches that change how duplicates and audit rows are handled.
type LoadFlags struct {
	// ForceDupFile reuses the key of an already stored data file instead of
	// dropping the file and its line data.
	ForceDupFile bool `yaml:"force_dup_file" xml:"force_dup_file"`

	// StatHeaderDBCheck probes the database for existing stat headers.
	// When false every header tuple in the batch is written as a new row.
	StatHeaderDBCheck bool `yaml:"stat_header_db_check" xml:"stat_header_db_check"`

	// LoadXML writes one instance_info audit row per job.
	LoadXML bool `yaml:"load_xml" xml:"load_xml"`

	// LocalInfile stages rows to a delimited file and streams it with COPY FROM STDIN.
	// When false rows are sent with the binary COPY protocol directly.
	LocalInfile bool `yaml:"local_infile" xml:"local_infile"`
}

// LoadConfig contains all parameters needed for one load job.
type LoadConfig struct {
	// ConnectionString is the PostgreSQL connection string of the target database.
	ConnectionString string

	// DatabaseName is the target database name.
	DatabaseName string

	Flags LoadFlags

	// Group and Description are written to the metadata table.
	Group       string
	Description string

	// LoadNote is the free-text note of the instance_info row.
	LoadNote string

	// LoadSpecXML is stored verbatim as the instance_info payload when set.
	LoadSpecXML string

	// StagingDir holds per-job staging directories. Defaults to os.TempDir().
	StagingDir string

	// Timeout bounds the whole job.
	Timeout time.Duration

	Verbose bool

	// AuthMethod indicates the authentication mechanism to use.
	AuthMethod AuthMethod

	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// Validate checks if the LoadConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *LoadConfig) Validate() error {
	var errs []error

	if c.ConnectionString == "" {
		errs = append(errs, fmt.Errorf("ConnectionString is required: %w", ErrInvalidConfig))
	}

	if c.DatabaseName == "" {
		errs = append(errs, fmt.Errorf("DatabaseName is required: %w", ErrInvalidConfig))
	}

	if c.Group == "" {
		errs = append(errs, fmt.Errorf("Group is required (use %q to skip metadata): %w", DefaultDatabaseGroup, ErrInvalidConfig))
	}

	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout cannot be negative: %w", ErrInvalidConfig))
	}

	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}

	return errors.Join(errs...)
}

// ConnectionConfig represents parsed connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
	AWSRegion         string
	GoogleInstance    string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// MetadataAction reports what the metadata upsert did.
type MetadataAction int

const (
	MetadataSkipped MetadataAction = iota
	MetadataInserted
	MetadataUpdated
	MetadataUnchanged
)

func (a MetadataAction) String() string {
	switch a {
	case MetadataSkipped:
		return "skipped"
	case MetadataInserted:
		return "inserted"
	case MetadataUpdated:
		return "updated"
	case MetadataUnchanged:
		return "unchanged"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// LoadResult summarizes a committed load job.
type LoadResult struct {
	JobID string

	FilesNew     int
	FilesReused  int
	FilesDropped []string

	HeadersNew      int
	HeadersExisting int

	// LinesWritten counts rows per line type.
	LinesWritten map[string]int

	Metadata MetadataAction

	// InstanceID is NoKey when no instance_info row was written.
	InstanceID int64

	Duration time.Duration
}

// TotalLines returns the number of line data rows written across all line types.
func (r *LoadResult) TotalLines() int {
	total := 0
	for _, n := range r.LinesWritten {
		total += n
	}
	return total
}
