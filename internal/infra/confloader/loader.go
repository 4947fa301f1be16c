package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "JSONKV_"

// Loader merges configuration sources into one koanf tree. Each source
// loaded later overrides keys set by earlier ones.
type Loader struct {
	k *koanf.Koanf

	envPrefix string
	filePath  string
	overrides map[string]any
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML file read by Load.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// WithOverrides sets dotted keys ("server.addr") applied by Load after
// every other source. Command-line flags go here.
func WithOverrides(values map[string]any) Option {
	return func(l *Loader) { l.overrides = values }
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// FilePath returns the configured file path, or "".
func (l *Loader) FilePath() string {
	return l.filePath
}

// Load merges file, environment and overrides, then unmarshals into
// target. Keys no source sets leave target untouched, so callers pass a
// struct already holding defaults.
func (l *Loader) Load(target any) error {
	steps := []func() error{
		func() error { return l.LoadFile(l.filePath) },
		l.LoadEnv,
		func() error { return l.LoadMap(l.overrides) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile merges a YAML file. An empty path is a no-op.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}
	return nil
}

// LoadEnv merges variables carrying the loader's prefix.
func (l *Loader) LoadEnv() error {
	if err := l.k.Load(env.Provider(l.envPrefix, ".", envKey(l.envPrefix)), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	return nil
}

// envKey maps PREFIX_SECTION_FIELD to section.field. Only the first
// underscore after the prefix splits, so JSONKV_SERVER_MAX_BODY_BYTES
// becomes server.max_body_bytes.
func envKey(prefix string) func(string) string {
	return func(name string) string {
		section, field, _ := strings.Cut(strings.TrimPrefix(name, prefix), "_")
		if field == "" {
			return strings.ToLower(section)
		}
		return strings.ToLower(section + "." + field)
	}
}

// LoadMap merges dotted keys from data.
func (l *Loader) LoadMap(data map[string]any) error {
	if len(data) == 0 {
		return nil
	}
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal decodes the merged tree into target using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// String returns a merged string value, or "" when absent.
func (l *Loader) String(key string) string {
	return l.k.String(key)
}
