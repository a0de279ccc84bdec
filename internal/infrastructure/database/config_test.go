package database

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
)

func TestConnectionConfig_WithDefaults(t *testing.T) {
	got := ConnectionConfig{User: "maximilian", Name: "bot"}.withDefaults()

	if got.Driver != DriverMySQL {
		t.Errorf("Driver = %q, want %q", got.Driver, DriverMySQL)
	}
	if got.Host != "localhost" {
		t.Errorf("Host = %q, want localhost", got.Host)
	}
	if got.Port != 3306 {
		t.Errorf("Port = %d, want 3306", got.Port)
	}
	if got.ConnectTimeout != 10*time.Second {
		t.Errorf("ConnectTimeout = %v, want 10s", got.ConnectTimeout)
	}

	lite := ConnectionConfig{Driver: DriverSQLite, Name: "x.db"}.withDefaults()
	if lite.Port != 0 {
		t.Errorf("sqlite Port = %d, want 0", lite.Port)
	}

	custom := ConnectionConfig{Host: "db.internal", Port: 3307, ConnectTimeout: time.Second}.withDefaults()
	if custom.Host != "db.internal" || custom.Port != 3307 || custom.ConnectTimeout != time.Second {
		t.Errorf("withDefaults() overwrote explicit values: %+v", custom)
	}
}

func TestConnectionConfig_MySQLDSN(t *testing.T) {
	cfg := ConnectionConfig{
		User:     "maximilian",
		Password: "p@ss:word",
		Host:     "db.internal",
		Port:     3307,
		Name:     "bot",
	}.withDefaults()

	dsn, err := cfg.dsn()
	if err != nil {
		t.Fatalf("dsn() error = %v", err)
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		t.Fatalf("mysql.ParseDSN(%q) error = %v", dsn, err)
	}

	if parsed.User != "maximilian" || parsed.Passwd != "p@ss:word" {
		t.Errorf("credentials = %q/%q, want round trip", parsed.User, parsed.Passwd)
	}
	if parsed.Addr != "db.internal:3307" {
		t.Errorf("Addr = %q, want db.internal:3307", parsed.Addr)
	}
	if parsed.DBName != "bot" {
		t.Errorf("DBName = %q, want bot", parsed.DBName)
	}
	if parsed.Collation != "utf8mb4_unicode_ci" {
		t.Errorf("Collation = %q, want utf8mb4_unicode_ci", parsed.Collation)
	}
	if !parsed.ParseTime {
		t.Error("ParseTime = false, want true")
	}
	if parsed.Timeout != 10*time.Second {
		t.Errorf("Timeout = %v, want 10s", parsed.Timeout)
	}
	if parsed.Params["autocommit"] != "true" {
		t.Errorf("Params[autocommit] = %q, want true", parsed.Params["autocommit"])
	}
}

func TestConnectionConfig_SQLiteDSN(t *testing.T) {
	cfg := ConnectionConfig{Driver: DriverSQLite, Name: "/var/lib/bot.db"}.withDefaults()

	dsn, err := cfg.dsn()
	if err != nil {
		t.Fatalf("dsn() error = %v", err)
	}
	if !strings.HasPrefix(dsn, "file:/var/lib/bot.db?") {
		t.Errorf("dsn = %q, want file: URI for the path", dsn)
	}
	for _, want := range []string{"_busy_timeout=10000", "_foreign_keys=on"} {
		if !strings.Contains(dsn, want) {
			t.Errorf("dsn = %q, missing %s", dsn, want)
		}
	}
}

func TestConnectionConfig_UnsupportedDriver(t *testing.T) {
	_, err := ConnectionConfig{Driver: "oracle"}.dsn()
	if !errors.Is(err, ErrUnsupportedDriver) {
		t.Errorf("dsn() error = %v, want ErrUnsupportedDriver", err)
	}
}

func TestConnectionConfig_TargetHidesCredentials(t *testing.T) {
	cfg := ConnectionConfig{User: "maximilian", Password: "secret", Name: "bot"}.withDefaults()

	if got := cfg.target(); got != "localhost:3306" {
		t.Errorf("target() = %q, want localhost:3306", got)
	}
	if strings.Contains(cfg.target(), "secret") {
		t.Error("target() leaks the password")
	}

	lite := ConnectionConfig{Driver: DriverSQLite, Name: "/tmp/bot.db"}
	if got := lite.target(); got != "/tmp/bot.db" {
		t.Errorf("sqlite target() = %q, want the file path", got)
	}
}
