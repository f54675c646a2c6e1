package config

import "time"

// ServerConfig is the root configuration for touchmap-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Render   RenderSection   `koanf:"render"`
	Tracking TrackingSection `koanf:"tracking"`
	Export   ExportSection   `koanf:"export"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the ingest endpoint.
type ServerSection struct {
	HTTP HTTPConfig `koanf:"http"`

	// ShutdownTimeout bounds the final flush of every session.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr        string `koanf:"addr"`
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// RateLimit is the sustained requests per second allowed per client
	// IP. Zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	// MaxBodyBytes bounds request bodies, snapshot uploads included.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RenderSection configures heatmap rendering.
type RenderSection struct {
	// Radius is the kernel size in image units.
	Radius int `koanf:"radius"`

	// Workers bounds the screens rendered in parallel per flush. Zero
	// uses GOMAXPROCS.
	Workers int `koanf:"workers"`

	// KernelCache bounds the number of cached kernels.
	KernelCache int `koanf:"kernel_cache"`
}

// TrackingSection configures sample intake.
type TrackingSection struct {
	// Phases lists accepted touch phases. Empty accepts all.
	Phases []string `koanf:"phases"`
}

// ExportSection configures where flushed heatmaps go.
type ExportSection struct {
	// Kind is one of dir, badger or none.
	Kind      string `koanf:"kind"`
	Dir       string `koanf:"dir"`
	BadgerDir string `koanf:"badger_dir"`

	// EncryptionKey seals stored images. 32 bytes, hex or base64.
	EncryptionKey string `koanf:"encryption_key"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
