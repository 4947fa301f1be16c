// Package config defines the jsonkv-server configuration.
//
//   - spec.go: ServerConfig struct definition
//   - default.go: default values
//   - verify.go: validation run before anything binds
//   - mode.go: front-end selection (http or resp)
//
// Values are loaded via internal/infra/confloader from a YAML file,
// JSONKV_* environment variables and command-line flags.
package config
