package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/core/service"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/infra/buildinfo"
	"github.com/yndnr/touchmap-go/internal/infra/confloader"
	"github.com/yndnr/touchmap-go/internal/infra/shutdown"
	"github.com/yndnr/touchmap-go/internal/server/config"
	"github.com/yndnr/touchmap-go/internal/server/httpserver"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
	"github.com/yndnr/touchmap-go/internal/telemetry/metric"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println("touchmap-server " + buildinfo.String())
		return nil
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.SetDefault(log)
	slogLogger := log.Slog()

	info := buildinfo.Get()
	log.Info("starting touchmap-server",
		"version", info.Version,
		"commit", info.Commit,
		"config", *configFile)
	log.Debug("effective configuration", "config", config.Sanitize(cfg))

	metrics := metric.NewRegistry()

	exporter, err := export.Open(cfg.ExportConfig(), slogLogger, metrics.Prometheus())
	if err != nil {
		return fmt.Errorf("open export store: %w", err)
	}

	renderCfg := cfg.RenderConfig()
	renderCfg.Logger = slogLogger
	renderer, err := render.NewRenderer(renderCfg)
	if err != nil {
		exporter.Close()
		return fmt.Errorf("init renderer: %w", err)
	}

	phases, err := domain.NewPhaseSet(cfg.Tracking.Phases)
	if err != nil {
		exporter.Close()
		return fmt.Errorf("tracking.phases: %w", err)
	}
	workers := cfg.Render.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	registry := service.NewRegistry(renderer,
		service.WithRegistryMetrics(metrics),
		service.WithRegistryLogger(slogLogger),
		service.WithSessionOptions(
			service.WithExporter(exporter),
			service.WithPhases(phases),
			service.WithWorkers(workers),
		))

	routerCfg := httpserver.DefaultRouterConfig()
	routerCfg.Registry = registry
	routerCfg.Catalog = exporter
	routerCfg.Metrics = metrics
	routerCfg.Logger = slogLogger
	routerCfg.RateLimit = cfg.Server.HTTP.RateLimit
	routerCfg.RateBurst = cfg.Server.HTTP.RateBurst
	routerCfg.MaxBodyBytes = cfg.Server.HTTP.MaxBodyBytes

	httpCfg := cfg.Server.HTTP
	srvOpts := []httpserver.Option{
		httpserver.WithTimeouts(httpCfg.ReadTimeout, httpCfg.WriteTimeout),
		httpserver.WithServerLogger(slogLogger),
	}
	if httpCfg.TLSCertFile != "" {
		srvOpts = append(srvOpts, httpserver.WithTLS(httpCfg.TLSCertFile, httpCfg.TLSKeyFile))
	}
	httpServer := httpserver.New(httpCfg.Addr, httpserver.NewRouter(routerCfg), srvOpts...)

	// Hooks run in reverse order: stop intake, flush sessions, close the store.
	shutdownHandler := shutdown.NewHandler(cfg.Server.ShutdownTimeout, slogLogger)
	shutdownHandler.OnShutdown("export store", func(context.Context) error {
		return exporter.Close()
	})
	shutdownHandler.OnShutdown("sessions", registry.CloseAll)
	shutdownHandler.OnShutdown("http server", httpServer.Shutdown)

	if *configFile != "" {
		stop, err := watchConfig(*configFile, slogLogger)
		if err != nil {
			log.Warn("config watcher disabled", "error", err)
		} else {
			shutdownHandler.OnShutdown("config watcher", func(context.Context) error {
				return stop()
			})
		}
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", "addr", httpCfg.Addr, "tls", httpServer.TLS())
		if err := httpServer.ListenAndServe(); err != nil {
			log.Error("HTTP server error", "error", err)
			serveErr <- err
			shutdownHandler.Trigger()
		}
	}()

	log.Info("server started, press Ctrl+C to stop")
	err = shutdownHandler.Wait()

	select {
	case serr := <-serveErr:
		err = errors.Join(serr, err)
	default:
	}
	if err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig layers the file and TOUCHMAP_ environment variables over the
// defaults, then verifies the result.
func loadConfig(configFile string) (*config.ServerConfig, error) {
	cfg := config.Default()

	var opts []confloader.Option
	if configFile != "" {
		opts = append(opts, confloader.WithConfigFile(configFile))
	}
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, err
	}

	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// watchConfig reloads log.level when the configuration file changes. A
// file that no longer verifies is ignored.
func watchConfig(path string, l *slog.Logger) (func() error, error) {
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(l))
	if err != nil {
		return nil, err
	}
	if err := w.Watch(path); err != nil {
		w.Stop()
		return nil, err
	}

	w.OnChange(func(string) {
		cfg, err := loadConfig(path)
		if err != nil {
			l.Warn("config reload rejected", "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			l.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w.Stop, nil
}
