package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"

	"github.com/go-sql-driver/mysql"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad conn", driver.ErrBadConn, true},
		{"wrapped bad conn", fmt.Errorf("exec: %w", driver.ErrBadConn), true},
		{"mysql invalid conn", mysql.ErrInvalidConn, true},
		{"conn done", sql.ErrConnDone, true},
		{"eof", io.EOF, true},
		{"unexpected eof", io.ErrUnexpectedEOF, true},
		{"connection reset", syscall.ECONNRESET, true},
		{"broken pipe", fmt.Errorf("write: %w", syscall.EPIPE), true},
		{"net op error", &net.OpError{Op: "read", Net: "tcp", Err: errors.New("i/o timeout")}, true},
		{"server gone away", &mysql.MySQLError{Number: 2006, Message: "MySQL server has gone away"}, true},
		{"server lost", &mysql.MySQLError{Number: 2013}, true},
		{"connection killed", &mysql.MySQLError{Number: 1927}, true},
		{"server shutdown", &mysql.MySQLError{Number: 1053}, true},
		{"syntax error", &mysql.MySQLError{Number: 1064, Message: "You have an error in your SQL syntax"}, false},
		{"duplicate key", &mysql.MySQLError{Number: 1062}, false},
		{"access denied", &mysql.MySQLError{Number: 1045}, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"canceled bad conn", errors.Join(context.Canceled, driver.ErrBadConn), false},
		{"plain error", errors.New("no such table: users"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsTableExists(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql table exists", &mysql.MySQLError{Number: 1050, Message: "Table 'users' already exists"}, true},
		{"wrapped mysql table exists", fmt.Errorf("create: %w", &mysql.MySQLError{Number: 1050}), true},
		{"mysql syntax error", &mysql.MySQLError{Number: 1064}, false},
		{"plain error mentioning exists", errors.New("table users already exists"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTableExists(tt.err); got != tt.want {
				t.Errorf("isTableExists(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestWrapQueryError(t *testing.T) {
	lost := wrapQueryError("exec", driver.ErrBadConn)
	if !errors.Is(lost, ErrTransientConnection) || errors.Is(lost, ErrQuery) {
		t.Errorf("wrapQueryError(bad conn) = %v, want ErrTransientConnection only", lost)
	}
	if !errors.Is(lost, driver.ErrBadConn) {
		t.Errorf("wrapQueryError(bad conn) lost the driver error: %v", lost)
	}

	rejected := wrapQueryError("exec", &mysql.MySQLError{Number: 1064})
	if !errors.Is(rejected, ErrQuery) || errors.Is(rejected, ErrTransientConnection) {
		t.Errorf("wrapQueryError(syntax) = %v, want ErrQuery only", rejected)
	}

	var myErr *mysql.MySQLError
	if !errors.As(rejected, &myErr) || myErr.Number != 1064 {
		t.Errorf("errors.As did not recover the MySQL error from %v", rejected)
	}
}

func TestEscalate(t *testing.T) {
	if err := escalate(nil); err != nil {
		t.Errorf("escalate(nil) = %v, want nil", err)
	}

	query := wrapQueryError("exec", errors.New("syntax"))
	if got := escalate(query); got != query {
		t.Errorf("escalate(query error) = %v, want unchanged", got)
	}

	lost := wrapQueryError("exec", driver.ErrBadConn)
	got := escalate(lost)
	if !errors.Is(got, ErrConnection) || !errors.Is(got, ErrTransientConnection) {
		t.Errorf("escalate(lost) = %v, want ErrConnection wrapping ErrTransientConnection", got)
	}
}
