package database

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Supported drivers.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

// Connection defaults.
const (
	// DefaultHost is used when ConnectionConfig.Host is empty.
	DefaultHost = "localhost"

	// defaultMySQLPort is used when ConnectionConfig.Port is zero.
	defaultMySQLPort = 3306

	// defaultConnectTimeout bounds dialing and the verification ping.
	defaultConnectTimeout = 10 * time.Second

	// mysqlCollation selects the 4-byte UTF-8 character set for the session.
	mysqlCollation = "utf8mb4_unicode_ci"
)

// ConnectionConfig holds the credentials and target of a facade.
// It is copied into the facade at construction and never modified afterwards.
type ConnectionConfig struct {
	// Driver is DriverMySQL (default) or DriverSQLite.
	Driver string

	User     string
	Password string

	// Host defaults to "localhost". Ignored by sqlite3.
	Host string

	// Port defaults to 3306 for mysql. Ignored by sqlite3.
	Port int

	// Name is the database name, or the database file path for sqlite3.
	Name string

	// ConnectTimeout bounds the dial and verification ping. Defaults to 10s.
	ConnectTimeout time.Duration

	// Pool tunes the pooled facade. The sync facade always uses one connection.
	Pool PoolConfig
}

// PoolConfig contains database/sql pool tuning for the pooled facade.
// Zero values keep the database/sql defaults.
type PoolConfig struct {
	MaxOpen         int
	MaxIdle         int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// withDefaults fills in the documented defaults.
func (c ConnectionConfig) withDefaults() ConnectionConfig {
	if c.Driver == "" {
		c.Driver = DriverMySQL
	}
	if c.Host == "" {
		c.Host = DefaultHost
	}
	if c.Port == 0 && c.Driver == DriverMySQL {
		c.Port = defaultMySQLPort
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = defaultConnectTimeout
	}
	return c
}

// dsn builds the driver-specific data source name.
//
// MySQL sessions use utf8mb4, autocommit and time parsing. SQLite runs in
// autocommit whenever no transaction is open, which this package never does.
func (c ConnectionConfig) dsn() (string, error) {
	switch c.Driver {
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.User
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
		mc.DBName = c.Name
		mc.Collation = mysqlCollation
		mc.Timeout = c.ConnectTimeout
		mc.ParseTime = true
		mc.Params = map[string]string{"autocommit": "true"}
		return mc.FormatDSN(), nil

	case DriverSQLite:
		// See: https://github.com/mattn/go-sqlite3#connection-string
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_foreign_keys=on",
			c.Name, c.ConnectTimeout.Milliseconds()), nil

	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedDriver, c.Driver)
	}
}

// target describes the connection for logs without exposing credentials.
func (c ConnectionConfig) target() string {
	if c.Driver == DriverSQLite {
		return c.Name
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
