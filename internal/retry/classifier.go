package retry

import (
	"errors"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// Transient PostgreSQL error codes outside the retryable classes 08, 53 and 57.
// See: https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgCodeSerializationFailure = "40001"
	pgCodeDeadlockDetected     = "40P01"
	pgCodeLockNotAvailable     = "55P03"
)

// pgClassIntegrityViolation covers foreign key, unique and not-null violations.
const pgClassIntegrityViolation = "23"

var transientPatterns = []string{
	"connection refused",
	"connection reset",
	"connection timeout",
	"connection failure",
	"no such host",
	"network is unreachable",
	"i/o timeout",
	"broken pipe",
	"too many connections",
	"server closed the connection",
	"unexpected eof",
	"context deadline exceeded",
}

// PostgreSQLErrorClassifier sorts PostgreSQL and network errors.
type PostgreSQLErrorClassifier struct{}

// NewPostgreSQLErrorClassifier creates a new PostgreSQL error classifier.
func NewPostgreSQLErrorClassifier() *PostgreSQLErrorClassifier {
	return &PostgreSQLErrorClassifier{}
}

// IsTransient determines if an error is temporary and retryable.
func (c *PostgreSQLErrorClassifier) IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		for _, class := range []string{"08", "53", "57"} {
			if strings.HasPrefix(pgErr.Code, class) {
				return true
			}
		}
		switch pgErr.Code {
		case pgCodeSerializationFailure, pgCodeDeadlockDetected, pgCodeLockNotAvailable:
			return true
		}
		return false
	}

	if isNetworkError(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// IsIntegrityViolation reports a class 23 error: the rows themselves broke a constraint.
func (c *PostgreSQLErrorClassifier) IsIntegrityViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pgClassIntegrityViolation)
}

// Kind maps a failed phase error to the kind reported to the caller.
// Batch inconsistencies and constraint violations are data contract failures;
// everything else is treated as infrastructure.
func (c *PostgreSQLErrorClassifier) Kind(err error) metdbload.ErrorKind {
	var dce *metdbload.DataContractError
	if errors.As(err, &dce) || c.IsIntegrityViolation(err) {
		return metdbload.KindDataContract
	}
	return metdbload.KindTransient
}

func isNetworkError(err error) bool {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary() || dnsErr.Timeout()
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return true
		}
		if opErr.Err != nil {
			for _, errno := range []syscall.Errno{syscall.ECONNREFUSED, syscall.ECONNRESET, syscall.ENETUNREACH, syscall.EHOSTUNREACH} {
				if errors.Is(opErr.Err, errno) {
					return true
				}
			}
		}
	}
	return false
}
