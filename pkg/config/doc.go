// Package config provides configuration management for flowc.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with validation and defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in three ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("flowc.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("flowc.yaml")
//
//  3. As the CLI does, falling back to ./flowc.yaml and then to defaults:
//     cfg, err := config.Load("")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention FLOWC_SECTION_FIELD.
// For example:
//
//   - FLOWC_COMPILER_FORMAT overrides compiler.format
//   - FLOWC_COMPILER_AGENTS appends comma-separated names to compiler.agents
//   - FLOWC_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//   - FLOWC_STORE_PATH overrides store.path
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Singleton Pattern
//
// For application-wide configuration access, use the singleton pattern:
//
//	if err := config.Initialize("flowc.yaml"); err != nil {
//	    log.Fatal(err)
//	}
//	cfg := config.GetConfig()
//
// The singleton remembers the file it was loaded from (Path). Watch mode
// calls ReloadConfig("") when that file changes and rebuilds only when the
// effective configuration differs.
//
// For testing, prefer dependency injection with explicit Config instances
// rather than the global singleton.
//
// # Example Configuration
//
//	compiler:
//	  version: "1.0"
//	  modules_dir: node_modules
//	  format: json
//	  agents: [sendEmail, queryDatabase]
//
//	telemetry:
//	  logging:
//	    level: info
//	    format: console
//
//	store:
//	  enabled: true
//	  path: .flowc/artifacts.db
//	  retention:
//	    max_age: 168h
//	    schedule: "0 3 * * *"
//
//	watch:
//	  debounce: 250ms
//	  metrics_addr: 127.0.0.1:9464
package config
