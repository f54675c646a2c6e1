package export

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/touchmap-go/internal/core/domain"
	"github.com/yndnr/touchmap-go/internal/storage"
	"github.com/yndnr/touchmap-go/pkg/crypto/adaptive"
)

// Backend kinds.
const (
	KindDir    = "dir"
	KindBadger = "badger"
	KindNone   = "none"
)

// Config selects and configures a backend.
type Config struct {
	Kind string

	// Dir is the root directory for KindDir.
	Dir string

	// BadgerDir is the database directory for KindBadger.
	BadgerDir string

	// EncryptionKey, when set, seals image bytes at rest. Hex or base64,
	// 32 bytes.
	EncryptionKey string

	// ReadOnly opens a Badger database without write access.
	ReadOnly bool
}

// Open creates the backend described by cfg. reg may be nil.
func Open(cfg Config, logger *slog.Logger, reg prometheus.Registerer) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var sealer *adaptive.Sealer
	if cfg.EncryptionKey != "" {
		key, err := adaptive.ParseKey(cfg.EncryptionKey)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails("export.encryption_key").WithCause(err)
		}
		if sealer, err = adaptive.New(key); err != nil {
			return nil, err
		}
	}

	switch cfg.Kind {
	case KindDir:
		opts := []DirOption{WithDirLogger(logger)}
		if sealer != nil {
			opts = append(opts, WithDirSealer(sealer))
		}
		return NewDirExporter(cfg.Dir, opts...)

	case KindBadger:
		kvCfg := storage.DefaultKVConfig(cfg.BadgerDir)
		kvCfg.ReadOnly = cfg.ReadOnly
		kv, err := storage.NewBadgerEngine(kvCfg, logger)
		if err != nil {
			return nil, err
		}
		if reg != nil {
			kv.RegisterMetrics(reg)
		}
		opts := []BadgerOption{WithBadgerLogger(logger), WithOwnedEngine()}
		if sealer != nil {
			opts = append(opts, WithBadgerSealer(sealer))
		}
		return NewBadgerExporter(kv, opts...), nil

	case KindNone, "":
		return Nop{}, nil

	default:
		return nil, domain.ErrInvalidArgument.WithDetails(fmt.Sprintf("unknown export kind %q", cfg.Kind))
	}
}
