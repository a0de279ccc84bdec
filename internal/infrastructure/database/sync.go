package database

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// SyncConnection is the single-connection facade.
//
// It connects eagerly in NewSyncConnection. When a statement fails because the
// connection was lost, it reconnects once and retries the statement once.
// A second consecutive loss is returned as ErrConnection.
//
// Thread Safety:
//   - Operations are serialized by an internal mutex, including the handle
//     replacement during reconnect. Concurrent callers queue behind each other.
type SyncConnection struct {
	cfg     ConnectionConfig
	schema  TableSchema
	logger  Logger
	events  emitter
	ensurer *SchemaEnsurer
	dial    dialFunc

	mu      sync.Mutex
	session Session
}

// NewSyncConnection validates the configuration and connects.
//
// Parameters:
//   - ctx: Context for the initial connect
//   - cfg: Credentials and target; Host defaults to "localhost"
//   - schema: Tables EnsureTables creates when missing (may be empty)
//   - opts: Optional logger and observer
//
// Returns:
//   - *SyncConnection: Connected facade
//   - error: ErrConnection if the server is unreachable or rejects the
//     credentials, ErrInvalidSchema or ErrUnsupportedDriver on bad input
func NewSyncConnection(ctx context.Context, cfg ConnectionConfig, schema TableSchema, opts Options) (*SyncConnection, error) {
	cfg = cfg.withDefaults()
	return newSyncConnection(ctx, cfg, schema, opts, sessionDialer(cfg))
}

func newSyncConnection(ctx context.Context, cfg ConnectionConfig, schema TableSchema, opts Options, dial dialFunc) (*SyncConnection, error) {
	d, err := dialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	events := emitter{mode: ModeSync, database: cfg.Name, observer: opts.Observer}
	logger := opts.logger()

	c := &SyncConnection{
		cfg:     cfg,
		schema:  append(TableSchema(nil), schema...),
		logger:  logger,
		events:  events,
		ensurer: newSchemaEnsurer(d, cfg.Name, logger, events),
		dial:    dial,
	}

	c.logger.Debug("database facade initialized", "mode", ModeSync, "driver", cfg.Driver)

	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// connect dials a new session and installs it. Callers hold c.mu or own c
// exclusively.
func (c *SyncConnection) connect(ctx context.Context) error {
	c.logger.Info("attempting to connect to database",
		"database", c.cfg.Name,
		"target", c.cfg.target(),
	)

	session, err := c.dial(ctx)
	if err != nil {
		if !errors.Is(err, ErrConnection) {
			err = fmt.Errorf("%w: %w", ErrConnection, err)
		}
		return err
	}

	c.session = session
	c.logger.Info("connected to database", "database", c.cfg.Name)
	c.events.emit(Event{Type: EventConnected})
	return nil
}

// reconnect replaces the session wholesale. On failure the facade is left
// without a session; the next call dials before running.
func (c *SyncConnection) reconnect(ctx context.Context) error {
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			c.logger.Debug("closing lost session", "error", err)
		}
		c.session = nil
	}

	if err := c.connect(ctx); err != nil {
		c.logger.Error("database reconnect failed", "error", err)
		c.events.emit(Event{Type: EventReconnectFailed, Err: err})
		return err
	}

	c.events.emit(Event{Type: EventReconnected})
	return nil
}

// withSession runs fn against the current session, applying the
// reconnect-and-retry-once policy to ErrTransientConnection failures.
func (c *SyncConnection) withSession(ctx context.Context, op string, fn func(Session) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("calling database operation", "op", op)

	if c.session == nil {
		// A previous reconnect failed. This dial is the one reconnect
		// attempt this call gets.
		if err := c.connect(ctx); err != nil {
			return err
		}
		return escalate(fn(c.session))
	}

	err := fn(c.session)
	if !errors.Is(err, ErrTransientConnection) {
		return err
	}

	c.logger.Info("database connection lost, reconnecting", "op", op, "error", err)
	c.events.emit(Event{Type: EventConnectionLost, Err: err})

	if err := c.reconnect(ctx); err != nil {
		return err
	}

	return escalate(fn(c.session))
}

// Exec runs query with params bound positionally and returns every row.
//
// params must be supplied even when the query has no placeholders (pass nil
// or an empty slice). Values are never interpolated into query.
//
// Returns:
//   - []Row: All rows, or nil when the statement produced none
//   - error: ErrQuery for rejected statements (no reconnect), ErrConnection
//     when the reconnect or the retry fails
func (c *SyncConnection) Exec(ctx context.Context, query string, params []any) ([]Row, error) {
	start := time.Now()

	var rows []Row
	err := c.withSession(ctx, "exec", func(s Session) error {
		var err error
		rows, err = fetchRows(ctx, s, query, params)
		if err != nil {
			return wrapQueryError("exec", err)
		}
		return nil
	})

	c.events.emit(Event{Type: EventQuery, Rows: len(rows), Duration: time.Since(start), Err: err})

	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ExecLegacy is Exec with the historical result shape: nil for no rows, a bare
// Row for exactly one row, []Row for two or more. New callers should use Exec.
func (c *SyncConnection) ExecLegacy(ctx context.Context, query string, params []any) (any, error) {
	rows, err := c.Exec(ctx, query, params)
	if err != nil {
		return nil, err
	}
	return legacyShape(rows), nil
}

// EnsureTables creates the configured tables that do not exist yet.
// It is meant to run once at startup, before any Exec against those tables.
func (c *SyncConnection) EnsureTables(ctx context.Context) (EnsureReport, error) {
	var report EnsureReport
	err := c.withSession(ctx, "ensure_tables", func(s Session) error {
		var err error
		report, err = c.ensurer.Ensure(ctx, s, c.schema)
		return err
	})
	return report, err
}

// TablesCreated reports whether the last EnsureTables pass created a table.
func (c *SyncConnection) TablesCreated() bool {
	return c.ensurer.TablesCreated()
}

// HealthCheck pings the server, reconnecting once if the connection is gone.
func (c *SyncConnection) HealthCheck(ctx context.Context) error {
	err := c.withSession(ctx, "health_check", func(s Session) error {
		if err := s.PingContext(ctx); err != nil {
			return wrapQueryError("ping", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close releases the session. The facade reconnects if used afterwards.
func (c *SyncConnection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return nil
	}

	err := c.session.Close()
	c.session = nil
	if err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	return nil
}
