// Package database provides the MySQL/SQLite access facade.
//
// This package manages:
//   - A single-connection facade (SyncConnection) that reconnects and
//     retries a statement once when the connection is lost
//   - A pooled facade (PooledConnection) that checks out one connection
//     per operation and never retries
//   - Idempotent creation of missing tables from an ordered declaration
//   - Classification of driver errors into connection loss and query failure
//
// Security Considerations:
//   - Statement values are always bound as parameters, never interpolated
//   - Table names and column fragments of a TableSchema are interpolated
//     into CREATE TABLE and must come from trusted configuration
//   - Passwords never appear in logs; connection targets are logged as
//     host:port only
//
// Usage:
//
//	conn, err := database.NewSyncConnection(ctx, database.ConnectionConfig{
//	    User: "maximilian", Password: "secret", Name: "bot",
//	}, database.TableSchema{
//	    {Name: "users", Columns: "id INT PRIMARY KEY, name VARCHAR(50)"},
//	}, database.Options{Logger: log})
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//
//	if _, err := conn.EnsureTables(ctx); err != nil {
//	    return err
//	}
//
//	rows, err := conn.Exec(ctx, "SELECT name FROM users WHERE id = ?", []any{42})
//
// Error Handling:
//
// Errors wrap one of the package sentinels (ErrConnection, ErrQuery,
// ErrSchema, ...) with the driver error kept in the chain, so both
// errors.Is and errors.As work on the result.
package database
