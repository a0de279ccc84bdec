package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/database"
)

// writeSQLiteConfig writes a config using a temp sqlite file and points
// DBFACADE_CONFIG at it.
func writeSQLiteConfig(t *testing.T, mode string) string {
	t.Helper()

	dir := t.TempDir()
	dbPath := filepath.Join(dir, "facade.db")
	configPath := filepath.Join(dir, "config.yaml")

	content := `
database:
  driver: sqlite3
  mode: ` + mode + `
  name: ` + dbPath + `

tables:
  users: "id INTEGER PRIMARY KEY, name TEXT NOT NULL"
  sessions: "token TEXT PRIMARY KEY, user_id INTEGER"

health:
  interval: 1

logging:
  level: error
  format: text
  output: stderr
`
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	t.Setenv("DBFACADE_CONFIG", configPath)
	return dbPath
}

// =============================================================================
// run Tests
// =============================================================================

// TestRun_InvalidConfig verifies run fails with invalid config path.
func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DBFACADE_CONFIG", "/nonexistent/path/config.yaml")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("run() should fail with invalid config path")
	}
}

// TestRun_UnreachableDatabase verifies run fails when the sqlite directory is missing.
func TestRun_UnreachableDatabase(t *testing.T) {
	writeSQLiteConfig(t, config.ModeSync)
	t.Setenv("DBFACADE_DATABASE_NAME", filepath.Join(t.TempDir(), "missing", "facade.db"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, nil, &bytes.Buffer{}); err == nil {
		t.Fatal("run() should fail when the database cannot be opened")
	}
}

// TestRun_OneShotQuery verifies tables are ensured and query rows are printed as JSON.
func TestRun_OneShotQuery(t *testing.T) {
	for _, mode := range []string{config.ModeSync, config.ModePooled} {
		t.Run(mode, func(t *testing.T) {
			writeSQLiteConfig(t, mode)

			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			var out bytes.Buffer
			if err := run(ctx, []string{"INSERT INTO users (id, name) VALUES (?, ?)", "7", "ada"}, &out); err != nil {
				t.Fatalf("run(insert) error = %v", err)
			}
			if got := bytes.TrimSpace(out.Bytes()); string(got) != "[]" {
				t.Errorf("insert output = %q, want []", got)
			}

			out.Reset()
			if err := run(ctx, []string{"SELECT id, name FROM users WHERE name = ?", "ada"}, &out); err != nil {
				t.Fatalf("run(select) error = %v", err)
			}

			var rows []map[string]any
			if err := json.Unmarshal(out.Bytes(), &rows); err != nil {
				t.Fatalf("output is not JSON: %v\n%s", err, out.String())
			}
			if len(rows) != 1 || rows[0]["name"] != "ada" || rows[0]["id"] != float64(7) {
				t.Errorf("rows = %v, want one row for ada", rows)
			}
		})
	}
}

// TestRun_QueryError verifies a bad statement fails the run.
func TestRun_QueryError(t *testing.T) {
	writeSQLiteConfig(t, config.ModeSync)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := run(ctx, []string{"SELECT * FROM no_such_table"}, &bytes.Buffer{}); err == nil {
		t.Fatal("run() should fail for an invalid statement")
	}
}

// TestRun_HealthLoopStopsOnCancel verifies the service mode returns on shutdown.
func TestRun_HealthLoopStopsOnCancel(t *testing.T) {
	writeSQLiteConfig(t, config.ModePooled)

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()

	if err := run(ctx, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("run() error = %v, want nil on shutdown", err)
	}
}

// =============================================================================
// Helper Tests
// =============================================================================

func TestGetConfigPath(t *testing.T) {
	t.Setenv("DBFACADE_CONFIG", "")
	if got := getConfigPath(); got != defaultConfigPath {
		t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
	}

	t.Setenv("DBFACADE_CONFIG", "/etc/dbfacade/config.yaml")
	if got := getConfigPath(); got != "/etc/dbfacade/config.yaml" {
		t.Errorf("getConfigPath() = %q, want env value", got)
	}
}

func TestConnectionConfig(t *testing.T) {
	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:         config.DriverMySQL,
			User:           "bot",
			Password:       "secret",
			Host:           "db.internal",
			Port:           3307,
			Name:           "botdb",
			ConnectTimeout: 5,
			Pool: config.PoolConfig{
				MaxOpen:         8,
				MaxIdle:         2,
				ConnMaxLifetime: 60,
				ConnMaxIdleTime: 30,
			},
		},
	}

	got := connectionConfig(cfg)
	want := database.ConnectionConfig{
		Driver:         database.DriverMySQL,
		User:           "bot",
		Password:       "secret",
		Host:           "db.internal",
		Port:           3307,
		Name:           "botdb",
		ConnectTimeout: 5 * time.Second,
		Pool: database.PoolConfig{
			MaxOpen:         8,
			MaxIdle:         2,
			ConnMaxLifetime: time.Minute,
			ConnMaxIdleTime: 30 * time.Second,
		},
	}
	if got != want {
		t.Errorf("connectionConfig() = %+v, want %+v", got, want)
	}
}

func TestTableSchemaKeepsOrder(t *testing.T) {
	tables := config.TablesConfig{
		{Name: "users", Columns: "id INT"},
		{Name: "audit", Columns: "id INT"},
	}

	schema := tableSchema(tables)
	if len(schema) != 2 || schema[0].Name != "users" || schema[1].Name != "audit" {
		t.Errorf("tableSchema() = %+v, want users then audit", schema)
	}
	if len(tableSchema(nil)) != 0 {
		t.Error("tableSchema(nil) should be empty")
	}
}
