package config

import (
	"errors"
	"fmt"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/telemetry/logger"
	"github.com/yndnr/touchmap-go/pkg/crypto/adaptive"
)

// Verify validates the configuration and reports every problem found.
func Verify(cfg *ServerConfig) error {
	return errors.Join(
		verifyServer(&cfg.Server),
		verifyRender(&cfg.Render),
		verifyTracking(&cfg.Tracking),
		verifyExport(&cfg.Export),
		verifyLog(&cfg.Log),
	)
}

func verifyServer(cfg *ServerSection) error {
	var errs []error
	if cfg.HTTP.Addr == "" {
		errs = append(errs, errors.New("server.http.addr is required"))
	}
	if (cfg.HTTP.TLSCertFile == "") != (cfg.HTTP.TLSKeyFile == "") {
		errs = append(errs, errors.New("server.http.tls_cert_file and tls_key_file must be set together"))
	}
	if cfg.HTTP.RateLimit < 0 {
		errs = append(errs, errors.New("server.http.rate_limit must not be negative"))
	}
	if cfg.HTTP.RateLimit > 0 && cfg.HTTP.RateBurst < 1 {
		errs = append(errs, errors.New("server.http.rate_burst must be at least 1 when rate limiting"))
	}
	if cfg.HTTP.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.http.max_body_bytes must be positive"))
	}
	if cfg.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("server.shutdown_timeout must be positive"))
	}
	return errors.Join(errs...)
}

func verifyRender(cfg *RenderSection) error {
	var errs []error
	if cfg.Radius <= 0 {
		errs = append(errs, fmt.Errorf("render.radius must be positive, got %d", cfg.Radius))
	}
	if cfg.Workers < 0 {
		errs = append(errs, errors.New("render.workers must not be negative"))
	}
	if cfg.KernelCache < 0 {
		errs = append(errs, errors.New("render.kernel_cache must not be negative"))
	}
	return errors.Join(errs...)
}

func verifyTracking(cfg *TrackingSection) error {
	if _, err := domain.NewPhaseSet(cfg.Phases); err != nil {
		return fmt.Errorf("tracking.phases: %w", err)
	}
	return nil
}

func verifyExport(cfg *ExportSection) error {
	var errs []error
	switch cfg.Kind {
	case export.KindDir:
		if cfg.Dir == "" {
			errs = append(errs, errors.New("export.dir is required for kind dir"))
		}
	case export.KindBadger:
		if cfg.BadgerDir == "" {
			errs = append(errs, errors.New("export.badger_dir is required for kind badger"))
		}
	case export.KindNone:
	default:
		errs = append(errs, fmt.Errorf("export.kind must be dir, badger or none, got %q", cfg.Kind))
	}

	if cfg.EncryptionKey != "" {
		if _, err := adaptive.ParseKey(cfg.EncryptionKey); err != nil {
			errs = append(errs, fmt.Errorf("export.encryption_key: %w", err))
		}
	}
	return errors.Join(errs...)
}

func verifyLog(cfg *LogSection) error {
	var errs []error
	if !logger.ValidLevel(cfg.Level) {
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", cfg.Level))
	}
	if cfg.Format != "json" && cfg.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", cfg.Format))
	}
	return errors.Join(errs...)
}
