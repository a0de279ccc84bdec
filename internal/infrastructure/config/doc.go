// Package config handles loading and validating the database facade configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//   - The ordered table declarations used for schema bootstrap
//
// Security Considerations:
//   - Sensitive values (database password, broker password, tokens) should be set
//     via environment variables
//   - The config file should have restricted permissions (0600)
//   - Table names and column definitions are interpolated into DDL verbatim.
//     They must come from trusted configuration, never from external input.
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Database.Name)
package config
