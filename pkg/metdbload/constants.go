package metdbload

import "time"

// Exit codes for semantic error classification.
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error
//   - 3+: Application-specific errors
const (
	ExitSuccess          = 0  // Load job committed
	ExitGeneralError     = 1  // Unknown or unclassified error
	ExitUsageError       = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic            = 3  // Internal panic (unexpected crash)
	ExitConfigError      = 10 // Invalid configuration or load flags
	ExitConnectionError  = 11 // Failed to connect to database
	ExitLoadFailed       = 13 // Query or bulk load failed, job rolled back
	ExitDataContractFail = 14 // Batch violated a referential contract, job rolled back
)

const (
	// NoKey marks a surrogate key that has not been assigned yet.
	NoKey int64 = -1

	// NullSentinel is written to staging files in place of missing numeric values.
	NullSentinel = "-9999"

	// NullSentinelValue is the numeric form of NullSentinel used by binary COPY.
	NullSentinelValue float64 = -9999

	// StagingSeparator is the field delimiter of staging files.
	StagingSeparator = '$'

	// DefaultDatabaseGroup is the metadata group that is never written.
	DefaultDatabaseGroup = "NO GROUP"

	// DefaultRetryInitialDelay is the initial delay before the first connection retry.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the maximum delay between connection retries.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the maximum number of connection retries.
	DefaultRetryMaxAttempts = 3

	// DefaultTimeout bounds a whole load job.
	DefaultTimeout = 30 * time.Minute

	// AppName is reported to the server as application_name.
	AppName = "metdbload"
)

// Key floors: the first id handed out when a table is empty.
const (
	DataFileFloor     int64 = 1
	StatHeaderFloor   int64 = 0
	InstanceInfoFloor int64 = 0
	LineDataFloor     int64 = 0
)
