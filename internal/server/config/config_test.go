package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/yndnr/touchmap-go/internal/core/render"
	"github.com/yndnr/touchmap-go/internal/export"
	"github.com/yndnr/touchmap-go/internal/infra/confloader"
)

const testKey = "0000000000000000000000000000000000000000000000000000000000000000"

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q", cfg.Server.HTTP.Addr)
	}
	if cfg.Render.Radius != render.DefaultRadius {
		t.Errorf("Radius = %d, want %d", cfg.Render.Radius, render.DefaultRadius)
	}
	if len(cfg.Tracking.Phases) != 0 {
		t.Errorf("Phases = %v, want all", cfg.Tracking.Phases)
	}
	if cfg.Export.Kind != export.KindDir {
		t.Errorf("Export.Kind = %q", cfg.Export.Kind)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) = %v", err)
	}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   string
	}{
		{"zero radius", func(c *ServerConfig) { c.Render.Radius = 0 }, "render.radius"},
		{"negative workers", func(c *ServerConfig) { c.Render.Workers = -1 }, "render.workers"},
		{"unknown phase", func(c *ServerConfig) { c.Tracking.Phases = []string{"hover"} }, "tracking.phases"},
		{"unknown export kind", func(c *ServerConfig) { c.Export.Kind = "s3" }, "export.kind"},
		{"dir without path", func(c *ServerConfig) { c.Export.Dir = "" }, "export.dir"},
		{"badger without path", func(c *ServerConfig) { c.Export.Kind = export.KindBadger }, "export.badger_dir"},
		{"bad key", func(c *ServerConfig) { c.Export.EncryptionKey = "short" }, "export.encryption_key"},
		{"bad log level", func(c *ServerConfig) { c.Log.Level = "verbose" }, "log.level"},
		{"bad log format", func(c *ServerConfig) { c.Log.Format = "xml" }, "log.format"},
		{"no addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "server.http.addr"},
		{"half tls", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "cert.pem" }, "tls_key_file"},
		{"rate without burst", func(c *ServerConfig) { c.Server.HTTP.RateBurst = 0 }, "rate_burst"},
		{"no shutdown timeout", func(c *ServerConfig) { c.Server.ShutdownTimeout = 0 }, "shutdown_timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Verify(cfg)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Verify = %v, want error mentioning %q", err, tt.want)
			}
		})
	}
}

func TestVerify_ReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Render.Radius = -3
	cfg.Export.Kind = "ftp"

	err := Verify(cfg)
	if err == nil {
		t.Fatal("Verify passed")
	}
	for _, want := range []string{"render.radius", "export.kind"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
}

func TestVerify_Valid(t *testing.T) {
	cfg := Default()
	cfg.Tracking.Phases = []string{"began", "Moved"}
	cfg.Export.Kind = export.KindBadger
	cfg.Export.BadgerDir = t.TempDir()
	cfg.Export.EncryptionKey = testKey
	cfg.Server.HTTP.RateLimit = 0
	cfg.Server.HTTP.RateBurst = 0

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify = %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Render.Radius = 40
	cfg.Export.EncryptionKey = testKey

	rc := cfg.RenderConfig()
	if rc.Radius != 40 || rc.KernelCacheSize != DefaultKernelCache {
		t.Errorf("RenderConfig = %+v", rc)
	}
	ec := cfg.ExportConfig()
	if ec.Kind != export.KindDir || ec.Dir != DefaultExportDir || ec.EncryptionKey != testKey {
		t.Errorf("ExportConfig = %+v", ec)
	}
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "touchmap.yaml")
	content := `
server:
  http:
    addr: ":9090"
render:
  radius: 50
tracking:
  phases: [began, moved]
export:
  kind: badger
  badger_dir: /tmp/touchmap-exports
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TOUCHMAP_RENDER_WORKERS", "3")
	t.Setenv("TOUCHMAP_LOG_LEVEL", "debug")

	cfg := Default()
	if err := confloader.NewLoader(confloader.WithConfigFile(path)).Load(cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.HTTP.Addr != ":9090" || cfg.Render.Radius != 50 || cfg.Render.Workers != 3 {
		t.Errorf("loaded = %+v / %+v", cfg.Server.HTTP, cfg.Render)
	}
	if !slices.Equal(cfg.Tracking.Phases, []string{"began", "moved"}) {
		t.Errorf("Phases = %v", cfg.Tracking.Phases)
	}
	if cfg.Export.BadgerDir != "/tmp/touchmap-exports" || cfg.Log.Level != "debug" {
		t.Errorf("Export = %+v, Log = %+v", cfg.Export, cfg.Log)
	}
	if cfg.Server.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("default ShutdownTimeout lost: %v", cfg.Server.ShutdownTimeout)
	}
	if err := Verify(cfg); err != nil {
		t.Errorf("Verify = %v", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	cfg.Export.EncryptionKey = testKey
	cfg.Tracking.Phases = []string{"began"}

	s := Sanitize(cfg)
	if cfg.Export.EncryptionKey != testKey {
		t.Error("original modified")
	}
	if s.Export.EncryptionKey == testKey || len(s.Export.EncryptionKey) != len(testKey) {
		t.Errorf("masked = %q", s.Export.EncryptionKey)
	}
	s.Tracking.Phases[0] = "ended"
	if cfg.Tracking.Phases[0] != "began" {
		t.Error("Sanitize shares the phases slice")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		if got := maskSecret(tt.input); got != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
