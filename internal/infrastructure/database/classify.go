package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"io"
	"net"
	"strings"
	"syscall"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// MySQL server and client error numbers that mean the session is gone.
const (
	mysqlServerShutdown    = 1053 // ER_SERVER_SHUTDOWN
	mysqlAbortingConn      = 1152 // ER_ABORTING_CONNECTION
	mysqlConnectionKilled  = 1927 // ER_CONNECTION_KILLED
	mysqlServerGoneAway    = 2006 // CR_SERVER_GONE_ERROR
	mysqlServerLost        = 2013 // CR_SERVER_LOST
	mysqlTableExistsNumber = 1050 // ER_TABLE_EXISTS_ERROR
)

var transientMySQLErrors = map[uint16]bool{
	mysqlServerShutdown:   true,
	mysqlAbortingConn:     true,
	mysqlConnectionKilled: true,
	mysqlServerGoneAway:   true,
	mysqlServerLost:       true,
}

// IsTransient reports whether err means the connection was lost, as opposed
// to the statement itself being rejected. Caller cancellation is never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	switch {
	case errors.Is(err, driver.ErrBadConn),
		errors.Is(err, mysql.ErrInvalidConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNABORTED),
		errors.Is(err, syscall.EPIPE):
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return transientMySQLErrors[myErr.Number]
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// isTableExists reports whether a CREATE TABLE failed only because the table
// is already there (created by a concurrent caller).
func isTableExists(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlTableExistsNumber
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return strings.Contains(liteErr.Error(), "already exists")
	}

	return false
}
