package database

import (
	"context"
	"fmt"
	"sync"
)

// EnsureReport lists what one ensure pass did.
type EnsureReport struct {
	// Checked holds every table whose existence was queried, in order.
	Checked []string

	// Created holds the tables this pass created, in order.
	Created []string
}

// NothingToDo reports whether every table already existed.
func (r EnsureReport) NothingToDo() bool {
	return len(r.Created) == 0
}

// SchemaEnsurer creates missing tables from a fixed declaration. It never
// alters or drops an existing table.
//
// Thread Safety:
//   - Ensure calls on one SchemaEnsurer are serialized.
//   - Existence checks and creation are not transactional. Two processes
//     ensuring the same schema may both try to create a table; the loser's
//     "already exists" error is logged at debug level and ignored.
type SchemaEnsurer struct {
	dialect  dialect
	database string
	logger   Logger
	events   emitter

	mu      sync.Mutex
	created bool
}

func newSchemaEnsurer(d dialect, database string, logger Logger, events emitter) *SchemaEnsurer {
	return &SchemaEnsurer{
		dialect:  d,
		database: database,
		logger:   logger,
		events:   events,
	}
}

// TablesCreated reports whether the last Ensure pass created at least one table.
func (e *SchemaEnsurer) TablesCreated() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.created
}

// Ensure checks each table of schema in order and creates the missing ones.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - q: Connection to run the checks and DDL on
//   - schema: Ordered table declarations
//
// Returns:
//   - EnsureReport: Tables checked and created, also on failure
//   - error: ErrSchema if a CREATE TABLE fails, ErrQuery or
//     ErrTransientConnection if an existence check fails
func (e *SchemaEnsurer) Ensure(ctx context.Context, q querier, schema TableSchema) (EnsureReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var report EnsureReport
	if err := schema.Validate(); err != nil {
		return report, err
	}

	e.logger.Info("finishing database setup", "tables", len(schema))

	e.created = false
	for _, t := range schema {
		report.Checked = append(report.Checked, t.Name)

		exists, err := e.tableExists(ctx, q, t.Name)
		if err != nil {
			return report, err
		}
		if exists {
			continue
		}

		e.logger.Debug("table doesn't exist, creating it", "database", e.database, "table", t.Name)
		e.logger.Debug("schema for table", "table", t.Name, "columns", t.Columns)

		if _, err := q.ExecContext(ctx, e.dialect.createTable(t)); err != nil {
			if isTableExists(err) {
				e.logger.Debug("table was created concurrently", "table", t.Name, "error", err)
				continue
			}
			if IsTransient(err) {
				return report, fmt.Errorf("%w: creating table %s: %w", ErrTransientConnection, t.Name, err)
			}
			return report, fmt.Errorf("%w: creating table %s: %w", ErrSchema, t.Name, err)
		}

		e.created = true
		report.Created = append(report.Created, t.Name)
		e.events.emit(Event{Type: EventTableCreated, Table: t.Name})
	}

	if !e.created {
		e.logger.Info("database setup was already finished, nothing to do")
	} else {
		e.logger.Warn("database setup finished", "created", report.Created)
	}
	e.events.emit(Event{Type: EventSchemaEnsured, Created: report.Created})

	return report, nil
}

// tableExists runs the dialect's exact-match existence query.
func (e *SchemaEnsurer) tableExists(ctx context.Context, q querier, table string) (bool, error) {
	rows, err := fetchRows(ctx, q, e.dialect.tableExistsQuery, []any{table})
	if err != nil {
		return false, wrapQueryError("checking table "+table, err)
	}
	return len(rows) > 0, nil
}
