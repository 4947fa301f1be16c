package main

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/jsonkv-go/internal/infra/buildinfo"
	"github.com/yndnr/jsonkv-go/internal/infra/confloader"
	"github.com/yndnr/jsonkv-go/internal/server/config"
)

// options collects the command line. Empty strings mean "not given".
type options struct {
	configPath  string
	addr        string
	mode        string
	modeArg     string
	resp        bool
	logLevel    string
	metricsAddr string
}

func newApp() *cli.App {
	return &cli.App{
		Name:      "jsonkv-server",
		Usage:     "in-memory JSON object store served over HTTP or RESP",
		ArgsUsage: "[http|resp]",
		Version:   buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a YAML config file",
				EnvVars: []string{confloader.DefaultEnvPrefix + "CONFIG"},
			},
			&cli.StringFlag{
				Name:  "addr",
				Usage: "listen address (host:port)",
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "front end: http or resp",
			},
			&cli.BoolFlag{
				Name:  "resp",
				Usage: "serve the RESP front end (same as --mode resp)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "listen address for /metrics, /health and /ready (empty disables)",
			},
		},
		Action: func(c *cli.Context) error {
			opts := &options{
				configPath:  c.String("config"),
				addr:        c.String("addr"),
				mode:        c.String("mode"),
				modeArg:     c.Args().First(),
				resp:        c.Bool("resp"),
				logLevel:    c.String("log-level"),
				metricsAddr: c.String("metrics-addr"),
			}
			if c.IsSet("metrics-addr") && opts.metricsAddr == "" {
				opts.metricsAddr = disabled
			}
			return run(c.Context, opts, nil)
		},
	}
}

// disabled marks an explicitly empty --metrics-addr.
const disabled = "-"

// loadConfig builds the effective configuration:
// defaults < file < environment < flags.
func loadConfig(opts *options) (*config.ServerConfig, error) {
	cfg := config.Default()

	loader := confloader.NewLoader(
		confloader.WithConfigFile(opts.configPath),
		confloader.WithOverrides(opts.overrides()),
	)
	if err := loader.Load(cfg); err != nil {
		return nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overrides maps the flags that were given to config keys. For the mode,
// the positional token beats --mode and --resp beats both.
func (o *options) overrides() map[string]any {
	m := make(map[string]any)
	set := func(key, v string) {
		if v != "" {
			m[key] = v
		}
	}
	set("server.addr", o.addr)
	set("server.mode", o.mode)
	set("server.mode", o.modeArg)
	if o.resp {
		m["server.mode"] = config.ModeRESP.String()
	}
	set("log.level", o.logLevel)
	switch o.metricsAddr {
	case "":
	case disabled:
		m["metrics.addr"] = ""
	default:
		m["metrics.addr"] = o.metricsAddr
	}
	return m
}
