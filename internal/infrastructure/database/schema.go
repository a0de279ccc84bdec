package database

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern restricts table names to plain unquoted identifiers.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9_$]+$`)

// TableDef declares one required table.
type TableDef struct {
	// Name is the exact table name.
	Name string

	// Columns is the column-definition fragment placed verbatim between the
	// parentheses of CREATE TABLE, e.g. "id INT PRIMARY KEY, name VARCHAR(50)".
	Columns string
}

// TableSchema is the ordered set of tables a facade ensures at startup.
// Tables are checked and created in slice order.
//
// Table names and column fragments are interpolated into DDL. They must come
// from trusted configuration, never from user input.
type TableSchema []TableDef

// Validate checks that every table has a unique, plain identifier name and a
// non-empty column definition.
func (s TableSchema) Validate() error {
	seen := make(map[string]bool, len(s))
	for i, t := range s {
		if !identifierPattern.MatchString(t.Name) {
			return fmt.Errorf("%w: table %d has invalid name %q", ErrInvalidSchema, i, t.Name)
		}
		if seen[t.Name] {
			return fmt.Errorf("%w: duplicate table %q", ErrInvalidSchema, t.Name)
		}
		seen[t.Name] = true
		if strings.TrimSpace(t.Columns) == "" {
			return fmt.Errorf("%w: table %q has no column definition", ErrInvalidSchema, t.Name)
		}
	}
	return nil
}

// Names returns the table names in order.
func (s TableSchema) Names() []string {
	names := make([]string, len(s))
	for i, t := range s {
		names[i] = t.Name
	}
	return names
}
