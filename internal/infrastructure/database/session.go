package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Session is a single live database connection.
type Session interface {
	querier
	PingContext(ctx context.Context) error
	Close() error
}

// dialFunc opens a new Session. The sync facade calls it on connect and on
// every reconnect.
type dialFunc func(ctx context.Context) (Session, error)

// sqlSession pins one *sql.Conn of a single-connection *sql.DB.
type sqlSession struct {
	*sql.Conn
	db *sql.DB
}

// Close releases the connection and its owning pool.
func (s *sqlSession) Close() error {
	return errors.Join(s.Conn.Close(), s.db.Close())
}

// openDB opens a database/sql handle for cfg without dialing.
func openDB(cfg ConnectionConfig) (*sql.DB, error) {
	dsn, err := cfg.dsn()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %w", ErrConnection, cfg.Driver, err)
	}
	return db, nil
}

// sessionDialer returns the default dialFunc: a dedicated connection on a
// pool capped at one, verified with a ping.
func sessionDialer(cfg ConnectionConfig) dialFunc {
	return func(ctx context.Context) (Session, error) {
		db, err := openDB(cfg)
		if err != nil {
			return nil, err
		}
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)

		dialCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()

		conn, err := db.Conn(dialCtx)
		if err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("%w: %w", ErrConnection, err)
		}

		if err := conn.PingContext(dialCtx); err != nil {
			conn.Close() //nolint:errcheck // Best effort cleanup on error path
			db.Close()   //nolint:errcheck // Best effort cleanup on error path
			return nil, fmt.Errorf("%w: verifying connection: %w", ErrConnection, err)
		}

		return &sqlSession{Conn: conn, db: db}, nil
	}
}
