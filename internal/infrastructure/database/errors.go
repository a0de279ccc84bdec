package database

import (
	"errors"
	"fmt"
)

// Sentinel errors for database facade operations.
//
// Driver errors stay in the chain, so both checks work:
//
//	if errors.Is(err, database.ErrQuery) {
//	    var myErr *mysql.MySQLError
//	    if errors.As(err, &myErr) && myErr.Number == 1062 { ... }
//	}
var (
	// ErrConnection indicates the initial connect, a reconnect, or the retry
	// after a reconnect failed. It is never retried by this package.
	ErrConnection = errors.New("database: connection failed")

	// ErrTransientConnection indicates the connection was lost while a
	// statement was running. The sync facade reconnects and retries once.
	ErrTransientConnection = errors.New("database: connection lost")

	// ErrQuery indicates a statement failed for a reason other than connection
	// loss (syntax error, constraint violation, ...). Never retried.
	ErrQuery = errors.New("database: query failed")

	// ErrSchema indicates a CREATE TABLE statement failed during schema ensure.
	ErrSchema = errors.New("database: schema ensure failed")

	// ErrNotConnected is returned by the pooled facade before Connect succeeds.
	ErrNotConnected = errors.New("database: not connected")

	// ErrInvalidSchema indicates a table declaration cannot be used in DDL.
	ErrInvalidSchema = errors.New("database: invalid table schema")

	// ErrUnsupportedDriver indicates ConnectionConfig.Driver is not known.
	ErrUnsupportedDriver = errors.New("database: unsupported driver")
)

// wrapQueryError tags a driver error as connection loss or query failure.
func wrapQueryError(op string, err error) error {
	if IsTransient(err) {
		return fmt.Errorf("%w: %s: %w", ErrTransientConnection, op, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrQuery, op, err)
}

// escalate turns a second consecutive connection loss into ErrConnection.
func escalate(err error) error {
	if errors.Is(err, ErrTransientConnection) {
		return fmt.Errorf("%w: retry after reconnect failed: %w", ErrConnection, err)
	}
	return err
}
