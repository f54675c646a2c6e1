package config

import (
	"time"

	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/export"
)

// Default configuration values.
const (
	DefaultHTTPAddr        = "127.0.0.1:7080"
	DefaultRateLimit       = 200
	DefaultRateBurst       = 400
	DefaultMaxBodyBytes    = 32 << 20
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKernelCache = 8

	DefaultExportKind = export.KindDir
	DefaultExportDir  = "./heatmaps"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:         DefaultHTTPAddr,
				RateLimit:    DefaultRateLimit,
				RateBurst:    DefaultRateBurst,
				MaxBodyBytes: DefaultMaxBodyBytes,
				ReadTimeout:  DefaultReadTimeout,
				WriteTimeout: DefaultWriteTimeout,
			},
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Render: RenderSection{
			Radius:      render.DefaultRadius,
			KernelCache: DefaultKernelCache,
		},
		Export: ExportSection{
			Kind: DefaultExportKind,
			Dir:  DefaultExportDir,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// RenderConfig converts the render section.
func (c *ServerConfig) RenderConfig() render.Config {
	return render.Config{
		Radius:          c.Render.Radius,
		KernelCacheSize: c.Render.KernelCache,
	}
}

// ExportConfig converts the export section.
func (c *ServerConfig) ExportConfig() export.Config {
	return export.Config{
		Kind:          c.Export.Kind,
		Dir:           c.Export.Dir,
		BadgerDir:     c.Export.BadgerDir,
		EncryptionKey: c.Export.EncryptionKey,
	}
}
