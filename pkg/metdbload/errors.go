package metdbload

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure scenarios.
// These enable callers to distinguish error types using errors.Is().
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates database connection failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrLoadFailed indicates a query or bulk load failed and the job was rolled back.
	ErrLoadFailed = errors.New("load failed")

	// ErrDataContract indicates the batch itself is inconsistent.
	ErrDataContract = errors.New("data contract violation")

	// ErrBatchNotFound indicates the batch hand-off files are missing.
	ErrBatchNotFound = errors.New("batch files not found")

	// ErrMalformedBatch indicates a batch hand-off file could not be parsed.
	ErrMalformedBatch = errors.New("malformed batch file")
)

// ErrorKind separates infrastructure failures from bad input.
type ErrorKind int

const (
	// KindTransient covers connectivity drops, malformed statements, type mismatches.
	KindTransient ErrorKind = iota
	// KindDataContract covers batches that reference rows they do not carry.
	KindDataContract
)

// String returns a human-readable name for the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindDataContract:
		return "data-contract"
	default:
		return fmt.Sprintf("Unknown(%d)", k)
	}
}

// Phase names used in PhaseError and logs.
const (
	PhaseConnect     = "connect"
	PhaseFiles       = "resolve_files"
	PhaseWriteFiles  = "write_files"
	PhaseHeaders     = "resolve_headers"
	PhaseWriteHeader = "write_headers"
	PhaseLineData    = "write_line_data"
	PhaseMetadata    = "write_metadata"
	PhaseCommit      = "commit"
)

// PhaseError reports which phase of a load job failed and why.
type PhaseError struct {
	Phase string
	Kind  ErrorKind
	Err   error
}

func (e *PhaseError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Phase, e.Kind, e.Err)
}

func (e *PhaseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match PhaseError against ErrLoadFailed or ErrDataContract.
func (e *PhaseError) Is(target error) bool {
	switch target {
	case ErrLoadFailed:
		return e.Kind == KindTransient
	case ErrDataContract:
		return e.Kind == KindDataContract
	}
	return false
}

// DataContractError describes a line record that cannot be tied to its parents.
type DataContractError struct {
	FileRow int
	Reason  string
}

func (e *DataContractError) Error() string {
	return fmt.Sprintf("file_row %d: %s", e.FileRow, e.Reason)
}

func (e *DataContractError) Is(target error) bool {
	return target == ErrDataContract
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig), errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrBatchNotFound):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrDataContract), errors.Is(err, ErrMalformedBatch):
		return ExitDataContractFail
	case errors.Is(err, ErrLoadFailed):
		return ExitLoadFailed
	}

	errStr := err.Error()
	if strings.Contains(errStr, "missing required argument") ||
		strings.Contains(errStr, "unknown flag") ||
		strings.Contains(errStr, "unknown shorthand flag") ||
		strings.Contains(errStr, "accepts ") ||
		strings.Contains(errStr, "required flag") ||
		strings.Contains(errStr, "invalid argument") {
		return ExitUsageError
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
