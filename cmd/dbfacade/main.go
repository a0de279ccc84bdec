// dbfacade - MySQL access facade
//
// This is the main entry point for the database facade service. It:
//   - Connects to the configured database in sync or pooled mode
//   - Ensures the configured tables exist
//   - Runs a one-shot query from the command line, or a periodic health loop
//
// Usage:
//
//	dbfacade                                   # health loop until SIGINT/SIGTERM
//	dbfacade "SELECT * FROM users WHERE id = ?" 42
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/config"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/database"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/influxdb"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/logging"
	"github.com/nerrad567/gray-logic-dbfacade/internal/infrastructure/mqtt"
	"github.com/nerrad567/gray-logic-dbfacade/internal/monitor"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// facade is the surface shared by the sync and pooled connections.
type facade interface {
	Exec(ctx context.Context, query string, params []any) ([]database.Row, error)
	EnsureTables(ctx context.Context) (database.EnsureReport, error)
	HealthCheck(ctx context.Context) error
	Close() error
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//   - args: Optional query followed by its positional parameters
//   - out: Destination for query results
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context, args []string, out io.Writer) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting dbfacade",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Connect to MQTT broker (optional)
	var publisher monitor.Publisher
	if cfg.MQTT.Enabled {
		mqttClient, mqttErr := mqtt.Connect(cfg.MQTT)
		if mqttErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", mqttErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		log.Info("MQTT connected",
			"broker", cfg.MQTT.Broker.Host,
			"port", cfg.MQTT.Broker.Port,
		)
		publisher = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Connect to InfluxDB (optional)
	var metrics monitor.MetricWriter
	if cfg.InfluxDB.Enabled {
		influxClient, influxErr := influxdb.Connect(ctx, cfg.InfluxDB)
		if influxErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", influxErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
		metrics = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	// The observer closes after the facade so it sees the final events.
	observer := monitor.New(publisher, metrics, log.Component("monitor"))
	defer observer.Close()

	conn, err := openFacade(ctx, cfg, database.Options{
		Logger:   log.Component("database"),
		Observer: observer,
	})
	if err != nil {
		return err
	}
	defer func() {
		log.Info("closing database")
		if closeErr := conn.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected",
		"driver", cfg.Database.Driver,
		"mode", cfg.Database.Mode,
		"database", cfg.Database.Name,
	)

	report, err := conn.EnsureTables(ctx)
	if err != nil {
		return fmt.Errorf("ensuring tables: %w", err)
	}
	log.Info("tables ensured", "checked", len(report.Checked), "created", len(report.Created))

	if len(args) > 0 {
		return runQuery(ctx, conn, args[0], args[1:], out)
	}

	log.Info("initialisation complete, waiting for shutdown signal")
	healthLoop(ctx, conn, cfg.GetHealthInterval(), log)

	log.Info("shutdown signal received, cleaning up")
	log.Info("dbfacade stopped")
	return nil
}

// openFacade connects the facade variant selected by cfg.Database.Mode.
func openFacade(ctx context.Context, cfg *config.Config, opts database.Options) (facade, error) {
	connCfg := connectionConfig(cfg)
	schema := tableSchema(cfg.Tables)

	if cfg.Database.Mode == config.ModePooled {
		pooled, err := database.NewPooledConnection(connCfg, schema, opts)
		if err != nil {
			return nil, fmt.Errorf("creating pooled connection: %w", err)
		}
		if err := pooled.Connect(ctx); err != nil {
			return nil, fmt.Errorf("connecting database pool: %w", err)
		}
		return pooled, nil
	}

	conn, err := database.NewSyncConnection(ctx, connCfg, schema, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}
	return conn, nil
}

// connectionConfig converts the YAML database section into facade settings.
func connectionConfig(cfg *config.Config) database.ConnectionConfig {
	db := cfg.Database
	return database.ConnectionConfig{
		Driver:         db.Driver,
		User:           db.User,
		Password:       db.Password,
		Host:           db.Host,
		Port:           db.Port,
		Name:           db.Name,
		ConnectTimeout: cfg.GetConnectTimeout(),
		Pool: database.PoolConfig{
			MaxOpen:         db.Pool.MaxOpen,
			MaxIdle:         db.Pool.MaxIdle,
			ConnMaxLifetime: time.Duration(db.Pool.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(db.Pool.ConnMaxIdleTime) * time.Second,
		},
	}
}

// tableSchema converts the configured tables, preserving order.
func tableSchema(tables config.TablesConfig) database.TableSchema {
	schema := make(database.TableSchema, 0, len(tables))
	for _, t := range tables {
		schema = append(schema, database.TableDef{Name: t.Name, Columns: t.Columns})
	}
	return schema
}

// runQuery executes query with string parameters and writes the rows as JSON.
func runQuery(ctx context.Context, conn facade, query string, args []string, out io.Writer) error {
	params := make([]any, len(args))
	for i, a := range args {
		params[i] = a
	}

	rows, err := conn.Exec(ctx, query, params)
	if err != nil {
		return fmt.Errorf("executing query: %w", err)
	}
	if rows == nil {
		rows = []database.Row{}
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(rows); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// healthLoop checks the database every interval until ctx is cancelled.
// A zero interval disables checking but still waits for shutdown.
func healthLoop(ctx context.Context, conn facade, interval time.Duration, log *logging.Logger) {
	if interval <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, interval)
			if err := conn.HealthCheck(checkCtx); err != nil {
				log.Warn("database health check failed", "error", err)
			} else {
				log.Debug("database health check passed")
			}
			cancel()
		}
	}
}

// getConfigPath returns the configuration file path.
// Uses DBFACADE_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DBFACADE_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
