package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// PooledConnection is the pooled facade.
//
// Connect opens a database/sql pool lazily. Every operation checks out one
// connection, runs, and returns it to the pool on every exit path. Failures
// are never retried; database/sql discards connections the driver reports
// as broken.
//
// Thread Safety:
//   - Exec and HealthCheck are safe for concurrent use. Concurrent calls
//     have no ordering guarantee; serialize them when order matters.
//   - EnsureTables calls are serialized with each other but not with Exec.
type PooledConnection struct {
	cfg     ConnectionConfig
	schema  TableSchema
	logger  Logger
	events  emitter
	ensurer *SchemaEnsurer

	mu sync.RWMutex
	db *sql.DB
}

// NewPooledConnection validates the configuration. It does not connect;
// call Connect before any other operation.
func NewPooledConnection(cfg ConnectionConfig, schema TableSchema, opts Options) (*PooledConnection, error) {
	cfg = cfg.withDefaults()

	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	events := emitter{mode: ModePooled, database: cfg.Name, observer: opts.Observer}
	logger := opts.logger()

	p := &PooledConnection{
		cfg:     cfg,
		schema:  append(TableSchema(nil), schema...),
		logger:  logger,
		events:  events,
		ensurer: newSchemaEnsurer(d, cfg.Name, logger, events),
	}
	p.logger.Debug("database facade initialized", "mode", ModePooled, "driver", cfg.Driver)

	return p, nil
}

// Connect opens the pool and verifies it with a ping.
//
// It performs the following setup:
//  1. Opens the database/sql handle for the configured driver
//  2. Applies the pool limits
//  3. Pings within ConnectTimeout
//  4. Installs the pool, closing any previous one
//
// Returns:
//   - error: ErrConnection if the server is unreachable or rejects the credentials
func (p *PooledConnection) Connect(ctx context.Context) error {
	p.logger.Info("attempting to connect to database",
		"database", p.cfg.Name,
		"target", p.cfg.target(),
	)

	db, err := openDB(p.cfg)
	if err != nil {
		return err
	}

	pool := p.cfg.Pool
	if pool.MaxOpen > 0 {
		db.SetMaxOpenConns(pool.MaxOpen)
	}
	if pool.MaxIdle > 0 {
		db.SetMaxIdleConns(pool.MaxIdle)
	}
	if pool.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	if pool.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(pool.ConnMaxIdleTime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, p.cfg.ConnectTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close() //nolint:errcheck // Best effort cleanup on error path
		return fmt.Errorf("%w: verifying connection: %w", ErrConnection, err)
	}

	p.mu.Lock()
	old := p.db
	p.db = db
	p.mu.Unlock()

	if old != nil {
		if err := old.Close(); err != nil {
			p.logger.Debug("closing replaced pool", "error", err)
		}
	}

	p.logger.Info("connected to database", "database", p.cfg.Name)
	p.events.emit(Event{Type: EventConnected})
	return nil
}

// pool returns the live pool or ErrNotConnected.
func (p *PooledConnection) pool() (*sql.DB, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.db == nil {
		return nil, ErrNotConnected
	}
	return p.db, nil
}

// withConn checks out one connection, runs fn, and releases the connection
// whatever fn returns.
func (p *PooledConnection) withConn(ctx context.Context, op string, fn func(*sql.Conn) error) error {
	db, err := p.pool()
	if err != nil {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%w: acquiring connection: %w", ErrConnection, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			p.logger.Debug("releasing connection", "op", op, "error", closeErr)
		}
	}()

	p.logger.Debug("calling database operation", "op", op)
	return fn(conn)
}

// Exec runs query with params bound positionally and returns every row.
//
// params must be supplied even when the query has no placeholders (pass nil
// or an empty slice). The result is always a slice, never a bare row.
//
// Returns:
//   - []Row: All rows, or nil when the statement produced none
//   - error: ErrNotConnected, ErrConnection, ErrTransientConnection or ErrQuery
func (p *PooledConnection) Exec(ctx context.Context, query string, params []any) ([]Row, error) {
	start := time.Now()

	var rows []Row
	err := p.withConn(ctx, "exec", func(conn *sql.Conn) error {
		var err error
		rows, err = fetchRows(ctx, conn, query, params)
		if err != nil {
			return wrapQueryError("exec", err)
		}
		return nil
	})

	p.events.emit(Event{Type: EventQuery, Rows: len(rows), Duration: time.Since(start), Err: err})

	if err != nil {
		return nil, err
	}
	return rows, nil
}

// EnsureTables creates the configured tables that do not exist yet, using a
// single checked-out connection for the whole pass.
func (p *PooledConnection) EnsureTables(ctx context.Context) (EnsureReport, error) {
	var report EnsureReport
	err := p.withConn(ctx, "ensure_tables", func(conn *sql.Conn) error {
		var err error
		report, err = p.ensurer.Ensure(ctx, conn, p.schema)
		return err
	})
	return report, err
}

// TablesCreated reports whether the last EnsureTables pass created a table.
func (p *PooledConnection) TablesCreated() bool {
	return p.ensurer.TablesCreated()
}

// HealthCheck verifies a pooled connection answers a ping.
func (p *PooledConnection) HealthCheck(ctx context.Context) error {
	err := p.withConn(ctx, "health_check", func(conn *sql.Conn) error {
		if err := conn.PingContext(ctx); err != nil {
			return wrapQueryError("ping", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Stats returns database/sql pool statistics, or zero stats before Connect.
func (p *PooledConnection) Stats() sql.DBStats {
	db, err := p.pool()
	if err != nil {
		return sql.DBStats{}
	}
	return db.Stats()
}

// Close closes the pool. Connect may be called again afterwards.
func (p *PooledConnection) Close() error {
	p.mu.Lock()
	db := p.db
	p.db = nil
	p.mu.Unlock()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
