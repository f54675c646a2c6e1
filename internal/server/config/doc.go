// Package config defines the touchmap-server configuration.
//
//   - schema.go: ServerConfig and its sections
//   - default.go: default values
//   - verify.go: validation
//   - sanitize.go: masking secrets for logs
//
// Values are loaded by internal/infra/confloader from a YAML file,
// TOUCHMAP_ environment variables and flags.
package config
