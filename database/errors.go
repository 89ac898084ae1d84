package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strings"

	apperrors "github.com/kbukum/dbunit/errors"
)

// IsConnectionError checks if a database error means the connection
// itself is unusable.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	patterns := []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"i/o timeout",
		"no route to host",
		"network is unreachable",
		"connection closed",
		"connection lost",
		"driver: bad connection",
		"invalid connection",
		"database is closed",
		"unable to open database file",
		"no such host",
		"too many connections",
	}
	for _, p := range patterns {
		if strings.Contains(errStr, p) {
			return true
		}
	}
	return false
}

// FromDatabase converts a driver error into an AppError. Connection
// failures become CONNECTION_FAILED; any other failure becomes
// STATEMENT_ERROR carrying statement in its details. AppErrors pass
// through unchanged.
func FromDatabase(err error, statement string) error {
	if err == nil {
		return nil
	}
	if apperrors.IsAppError(err) {
		return err
	}
	if IsConnectionError(err) {
		return apperrors.ConnectionFailed("database", err)
	}
	return apperrors.StatementError(statement, err)
}
