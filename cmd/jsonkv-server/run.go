package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/yndnr/jsonkv-go/internal/core/service"
	"github.com/yndnr/jsonkv-go/internal/infra/buildinfo"
	"github.com/yndnr/jsonkv-go/internal/infra/confloader"
	"github.com/yndnr/jsonkv-go/internal/infra/shutdown"
	"github.com/yndnr/jsonkv-go/internal/server/config"
	"github.com/yndnr/jsonkv-go/internal/server/dispatcher"
	"github.com/yndnr/jsonkv-go/internal/server/httpserver/handler"
	"github.com/yndnr/jsonkv-go/internal/storage/memory"
	"github.com/yndnr/jsonkv-go/internal/telemetry/logger"
	"github.com/yndnr/jsonkv-go/internal/telemetry/metric"
)

const shutdownTimeout = 30 * time.Second

// started is called once the front end is about to serve. Tests use it
// to learn the bound address.
type started func(d *dispatcher.Dispatcher, metricsSrv *metric.Server)

func run(ctx context.Context, opts *options, onStart started) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load configuration
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	log.Info("starting jsonkv-server", "version", buildinfo.String())

	// 3. Bind the server address before anything else exists
	ln, err := dispatcher.Listen(cfg.Server.Addr)
	if err != nil {
		return err
	}

	// 4. Store and executor
	store := memory.New()
	exec := service.NewKVService(store)

	// 5. Metrics
	metrics := metric.NewRegistry()
	if err := metrics.RegisterStoreSize(store.Len); err != nil {
		_ = ln.Close()
		return fmt.Errorf("register store metrics: %w", err)
	}
	info := buildinfo.Get()
	if err := metrics.SetBuildInfo(info.Version, info.Commit, info.GoVersion); err != nil {
		_ = ln.Close()
		return fmt.Errorf("register build info: %w", err)
	}

	// 6. Front end
	mode := cfg.SelectedMode()
	disp := dispatcher.New(mode, ln, dispatcher.NewFrontend(mode, cfg, exec, metrics, log), log)

	var metricsSrv *metric.Server
	if cfg.Metrics.Addr != "" {
		metricsSrv, err = metric.Listen(cfg.Metrics.Addr, metrics, map[string]http.Handler{
			"/health": handler.Health(store.Len),
			"/ready":  handler.Ready(mode.String(), disp.Ready),
		})
		if err != nil {
			_ = ln.Close()
			return err
		}
	}

	// 7. Setup graceful shutdown
	shutdownHandler := shutdown.NewHandler(shutdownTimeout)

	// Register shutdown hooks (reverse order of startup)
	shutdownHandler.OnShutdown(func(ctx context.Context) error {
		log.Info("stopping front end")
		return disp.Shutdown(ctx)
	})
	if metricsSrv != nil {
		shutdownHandler.OnShutdown(func(ctx context.Context) error {
			log.Info("stopping metrics server")
			return metricsSrv.Shutdown(ctx)
		})
	}
	if opts.configPath != "" {
		watcher, err := watchConfig(opts, log)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown(func(context.Context) error {
				return watcher.Stop()
			})
		}
	}

	// 8. Serve
	if metricsSrv != nil {
		go func() {
			log.Info("metrics server listening", "addr", metricsSrv.Addr().String())
			if err := metricsSrv.Serve(); err != nil {
				shutdownHandler.Trigger(fmt.Errorf("metrics server: %w", err))
			}
		}()
	}
	go func() {
		if err := disp.Serve(); err != nil {
			shutdownHandler.Trigger(fmt.Errorf("%s server: %w", mode, err))
		}
	}()
	if onStart != nil {
		onStart(disp, metricsSrv)
	}

	// 9. Wait for shutdown
	hookErr := shutdownHandler.Wait(ctx)
	cause := shutdownHandler.Cause()
	if errors.Is(cause, shutdown.ErrSignal) || errors.Is(cause, context.Canceled) {
		cause = nil
	}
	if hookErr != nil {
		log.Error("shutdown incomplete", "error", hookErr)
	} else {
		log.Info("server stopped")
	}
	return errors.Join(cause, hookErr)
}

func initLogger(cfg *config.ServerConfig) (*slog.Logger, error) {
	l, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stderr,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(l)
	return logger.Slog(l), nil
}

// watchConfig reapplies log.level when the config file changes. Address
// and mode are fixed for the life of the process.
func watchConfig(opts *options, log *slog.Logger) (*confloader.Watcher, error) {
	w, err := confloader.NewWatcher(opts.configPath, confloader.WithWatcherLogger(log))
	if err != nil {
		return nil, err
	}
	w.OnChange(func(path string) {
		if opts.logLevel != "" {
			return
		}
		cfg := config.Default()
		if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
			log.Warn("config reload failed", "path", path, "error", err)
			return
		}
		if !logger.ValidLevel(cfg.Log.Level) {
			log.Warn("config reload ignored invalid log level", "level", cfg.Log.Level)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w, nil
}
