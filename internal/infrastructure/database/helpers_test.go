package database

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// sqliteConfig returns a ConnectionConfig for a fresh database file.
func sqliteConfig(t *testing.T) ConnectionConfig {
	t.Helper()

	return ConnectionConfig{
		Driver:         DriverSQLite,
		Name:           filepath.Join(t.TempDir(), "facade.db"),
		ConnectTimeout: 5 * time.Second,
	}.withDefaults()
}

// scriptedSession wraps a real session and fails QueryContext calls with the
// queued errors before delegating. A nil entry delegates.
type scriptedSession struct {
	Session

	mu        sync.Mutex
	queryErrs []error
	queries   int
	execs     int
	closed    bool
}

func (s *scriptedSession) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.mu.Lock()
	s.queries++
	var err error
	if len(s.queryErrs) > 0 {
		err = s.queryErrs[0]
		s.queryErrs = s.queryErrs[1:]
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return s.Session.QueryContext(ctx, query, args...)
}

func (s *scriptedSession) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.mu.Lock()
	s.execs++
	s.mu.Unlock()
	return s.Session.ExecContext(ctx, query, args...)
}

func (s *scriptedSession) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return s.Session.Close()
}

// fakeDialer hands out scripted sessions over one SQLite file.
type fakeDialer struct {
	t   *testing.T
	cfg ConnectionConfig

	// dialErrs[i] fails the (i+1)th dial when non-nil.
	dialErrs []error
	// scripts[i] is the queryErrs of the (i+1)th session handed out.
	scripts [][]error

	dials    int
	sessions []*scriptedSession
}

func (d *fakeDialer) dial(ctx context.Context) (Session, error) {
	d.dials++
	if i := d.dials - 1; i < len(d.dialErrs) && d.dialErrs[i] != nil {
		return nil, d.dialErrs[i]
	}

	inner, err := sessionDialer(d.cfg)(ctx)
	if err != nil {
		d.t.Fatalf("dialing sqlite: %v", err)
	}

	s := &scriptedSession{Session: inner}
	if i := len(d.sessions); i < len(d.scripts) {
		s.queryErrs = append([]error(nil), d.scripts[i]...)
	}
	d.sessions = append(d.sessions, s)
	return s, nil
}

// newScriptedSync builds a SyncConnection on a fakeDialer.
func newScriptedSync(t *testing.T, d *fakeDialer, schema TableSchema, opts Options) *SyncConnection {
	t.Helper()

	if d.cfg.Name == "" {
		d.cfg = sqliteConfig(t)
	}
	d.t = t

	c, err := newSyncConnection(context.Background(), d.cfg, schema, opts, d.dial)
	if err != nil {
		t.Fatalf("newSyncConnection() error = %v", err)
	}
	t.Cleanup(func() { c.Close() }) //nolint:errcheck // Test cleanup
	return c
}

// openTestPool creates a connected PooledConnection on a temporary SQLite file.
func openTestPool(t *testing.T, schema TableSchema, opts Options) *PooledConnection {
	t.Helper()

	p, err := NewPooledConnection(sqliteConfig(t), schema, opts)
	if err != nil {
		t.Fatalf("NewPooledConnection() error = %v", err)
	}
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	t.Cleanup(func() { p.Close() }) //nolint:errcheck // Test cleanup
	return p
}

// bufferLogger returns a debug-level JSON logger writing into buf.
func bufferLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// eventRecorder collects observed events.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *eventRecorder) count(t EventType) int {
	n := 0
	for _, got := range r.types() {
		if got == t {
			n++
		}
	}
	return n
}
