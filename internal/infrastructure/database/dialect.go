package database

import "fmt"

// dialect holds the SQL that differs between drivers.
type dialect struct {
	// tableExistsQuery returns one row when a table with exactly the bound
	// name exists in the current database. Matching is case-sensitive and
	// treats '_' and '%' as literal characters.
	tableExistsQuery string
}

var dialects = map[string]dialect{
	DriverMySQL: {
		tableExistsQuery: "SELECT TABLE_NAME FROM information_schema.TABLES " +
			"WHERE TABLE_SCHEMA = DATABASE() AND BINARY TABLE_NAME = ?",
	},
	DriverSQLite: {
		tableExistsQuery: "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
	},
}

// dialectFor returns the dialect registered for driver.
func dialectFor(driver string) (dialect, error) {
	d, ok := dialects[driver]
	if !ok {
		return dialect{}, fmt.Errorf("%w: %q", ErrUnsupportedDriver, driver)
	}
	return d, nil
}

// createTable renders the DDL for a missing table. Both parts are trusted
// configuration; see TableSchema.Validate.
func (dialect) createTable(t TableDef) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", t.Name, t.Columns)
}
