package config

import "time"

// ServerConfig is the root configuration for jsonkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the single key-value front end.
type ServerSection struct {
	// Addr is the TCP address both front ends bind to.
	Addr string `koanf:"addr"`

	// Mode selects the front end: "http" (default) or "resp".
	Mode string `koanf:"mode"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`

	// IdleTimeout bounds keep-alive HTTP connections and idle RESP clients.
	IdleTimeout time.Duration `koanf:"idle_timeout"`

	// MaxBodyBytes caps an HTTP request body.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// RateLimit is the per-client requests per second; 0 disables it.
	RateLimit float64 `koanf:"rate_limit"`
}

// MetricsSection configures the optional observability listener.
type MetricsSection struct {
	// Addr serves /metrics, /health and /ready. Empty disables it.
	Addr string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SelectedMode returns the parsed front-end mode.
func (c *ServerConfig) SelectedMode() Mode {
	return ParseMode(c.Server.Mode)
}
