// Package confloader loads layered configuration with koanf.
//
// Later sources win:
//
//  1. Values already present in the target struct
//  2. YAML configuration file
//  3. Environment variables (JSONKV_SECTION_FIELD)
//  4. Overrides, normally command-line flags
//
// Watcher reports writes to the configuration file through fsnotify so
// that settings safe to change at runtime can be reapplied.
package confloader
