package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// TableConfig declares one table the facade must ensure exists.
type TableConfig struct {
	Name    string `yaml:"name"`
	Columns string `yaml:"columns"`
}

// TablesConfig is the ordered list of required tables.
//
// It accepts either a YAML mapping of table name to column definition,
// which keeps the declaration order of the file:
//
//	tables:
//	  users: "id INT PRIMARY KEY, name VARCHAR(50)"
//	  sessions: "token CHAR(64) PRIMARY KEY, user_id INT"
//
// or a sequence of {name, columns} entries.
type TablesConfig []TableConfig

// UnmarshalYAML decodes a mapping or sequence node while preserving order.
func (t *TablesConfig) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.MappingNode:
		out := make(TablesConfig, 0, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if key.Kind != yaml.ScalarNode || val.Kind != yaml.ScalarNode {
				return fmt.Errorf("tables: line %d: expected name: columns pair", key.Line)
			}
			out = append(out, TableConfig{Name: key.Value, Columns: val.Value})
		}
		*t = out
		return nil

	case yaml.SequenceNode:
		var list []TableConfig
		if err := node.Decode(&list); err != nil {
			return fmt.Errorf("tables: %w", err)
		}
		*t = list
		return nil

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*t = nil
			return nil
		}
	}

	return fmt.Errorf("tables: line %d: expected a mapping or a sequence", node.Line)
}
