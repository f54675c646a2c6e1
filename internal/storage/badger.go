package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/prometheus/client_golang/prometheus"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrClosed      = errors.New("kv engine closed")
)

// BadgerEngine implements KVEngine using Badger v3.
type BadgerEngine struct {
	db     *badger.DB
	cfg    KVConfig
	logger *slog.Logger
	closed atomic.Bool

	lastGCTime atomic.Int64  // Unix milliseconds
	gcRewrites atomic.Uint64 // value-log files rewritten

	metricsLSMSize      prometheus.Gauge
	metricsValueLogSize prometheus.Gauge
	metricsLastGCTime   prometheus.Gauge
	metricsGCRewrites   prometheus.Counter

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewBadgerEngine opens a Badger database.
func NewBadgerEngine(cfg KVConfig, logger *slog.Logger) (*BadgerEngine, error) {
	if cfg.Dir == "" && !cfg.InMemory {
		return nil, fmt.Errorf("badger: dir is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir).
		WithLogger(&badgerLogger{logger: logger}).
		WithBlockCacheSize(cfg.Badger.CacheSize).
		WithValueLogFileSize(cfg.Badger.ValueLogFileSize).
		WithSyncWrites(cfg.Badger.SyncWrites).
		WithReadOnly(cfg.ReadOnly)
	if cfg.InMemory {
		opts = opts.WithInMemory(true).WithDir("").WithValueDir("")
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	e := &BadgerEngine{
		db:     db,
		cfg:    cfg,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if interval := e.gcInterval(); interval > 0 && !cfg.InMemory && !cfg.ReadOnly {
		e.wg.Add(1)
		go e.gcLoop(interval)
	}

	logger.Debug("badger engine opened",
		"dir", cfg.Dir,
		"in_memory", cfg.InMemory,
		"read_only", cfg.ReadOnly)

	return e, nil
}

// Get retrieves a value by key.
func (e *BadgerEngine) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := e.check(ctx); err != nil {
		return nil, err
	}

	var value []byte
	err := e.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrKeyNotFound
			}
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores a key-value pair.
func (e *BadgerEngine) Set(ctx context.Context, key, value []byte) error {
	return e.SetMany(ctx, []Entry{{Key: key, Value: value}})
}

// SetMany stores several pairs atomically.
func (e *BadgerEngine) SetMany(ctx context.Context, entries []Entry) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	return e.db.Update(func(txn *badger.Txn) error {
		for _, ent := range entries {
			if err := txn.Set(ent.Key, ent.Value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes a key.
func (e *BadgerEngine) Delete(ctx context.Context, key []byte) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	return e.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// DeletePrefix removes every key with the given prefix.
func (e *BadgerEngine) DeletePrefix(ctx context.Context, prefix []byte) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	return e.db.DropPrefix(prefix)
}

// Scan iterates over keys with a given prefix.
func (e *BadgerEngine) Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	return e.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if !fn(item.KeyCopy(nil), value) {
				break
			}
		}
		return nil
	})
}

// Backup writes a full backup stream to w.
func (e *BadgerEngine) Backup(ctx context.Context, w io.Writer) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	if _, err := e.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup: %w", err)
	}
	return nil
}

// Restore loads a backup stream into the database. Existing keys are
// overwritten; keys absent from the backup are kept.
func (e *BadgerEngine) Restore(ctx context.Context, r io.Reader) error {
	if err := e.check(ctx); err != nil {
		return err
	}
	if err := e.db.Load(r, 256); err != nil {
		return fmt.Errorf("restore: %w", err)
	}
	e.logger.Info("badger backup restored")
	return nil
}

// GC runs value-log GC until nothing more can be rewritten.
func (e *BadgerEngine) GC(ctx context.Context) (int, error) {
	if err := e.check(ctx); err != nil {
		return 0, err
	}

	start := time.Now()
	rewrites := 0
	for ctx.Err() == nil {
		err := e.db.RunValueLogGC(e.cfg.Badger.GCThreshold)
		if err != nil {
			if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
				break
			}
			return rewrites, fmt.Errorf("gc: %w", err)
		}
		rewrites++
	}

	e.lastGCTime.Store(time.Now().UnixMilli())
	e.gcRewrites.Add(uint64(rewrites))
	if e.metricsGCRewrites != nil {
		e.metricsGCRewrites.Add(float64(rewrites))
	}

	e.logger.Debug("badger gc completed",
		"rewrites", rewrites,
		"elapsed", time.Since(start))

	return rewrites, nil
}

// Stats returns storage statistics.
func (e *BadgerEngine) Stats(ctx context.Context) (*KVStats, error) {
	if err := e.check(ctx); err != nil {
		return nil, err
	}
	lsm, vlog := e.db.Size()
	return &KVStats{
		TotalSize:    uint64(lsm + vlog),
		LSMSize:      uint64(lsm),
		ValueLogSize: uint64(vlog),
		LastGCTime:   e.lastGCTime.Load(),
		GCRewrites:   e.gcRewrites.Load(),
	}, nil
}

// Close stops background loops and closes the database. It is safe to
// call more than once.
func (e *BadgerEngine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return nil
	}

	close(e.stopCh)
	e.wg.Wait()

	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	e.logger.Debug("badger engine closed")
	return nil
}

// RegisterMetrics registers storage size gauges with Prometheus and
// starts refreshing them. Returns the engine for method chaining.
func (e *BadgerEngine) RegisterMetrics(registry prometheus.Registerer) *BadgerEngine {
	e.metricsLSMSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchmap",
		Subsystem: "badger",
		Name:      "lsm_size_bytes",
		Help:      "Badger LSM tree size in bytes",
	})
	e.metricsValueLogSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchmap",
		Subsystem: "badger",
		Name:      "value_log_size_bytes",
		Help:      "Badger value log size in bytes",
	})
	e.metricsLastGCTime = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "touchmap",
		Subsystem: "badger",
		Name:      "last_gc_timestamp_seconds",
		Help:      "Unix timestamp of the last Badger GC run",
	})
	e.metricsGCRewrites = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "touchmap",
		Subsystem: "badger",
		Name:      "gc_rewrites_total",
		Help:      "Value-log files rewritten by Badger GC",
	})

	registry.MustRegister(
		e.metricsLSMSize,
		e.metricsValueLogSize,
		e.metricsLastGCTime,
		e.metricsGCRewrites,
	)

	e.updateMetrics()
	e.wg.Add(1)
	go e.metricsLoop(15 * time.Second)

	return e
}

func (e *BadgerEngine) updateMetrics() {
	stats, err := e.Stats(context.Background())
	if err != nil {
		return
	}
	e.metricsLSMSize.Set(float64(stats.LSMSize))
	e.metricsValueLogSize.Set(float64(stats.ValueLogSize))
	if stats.LastGCTime > 0 {
		e.metricsLastGCTime.Set(float64(stats.LastGCTime) / 1000.0)
	}
}

func (e *BadgerEngine) metricsLoop(interval time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.updateMetrics()
		case <-e.stopCh:
			return
		}
	}
}

func (e *BadgerEngine) gcLoop(interval time.Duration) {
	defer e.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			if _, err := e.GC(ctx); err != nil {
				e.logger.Error("auto gc failed", "error", err)
			}
			cancel()
		case <-e.stopCh:
			return
		}
	}
}

func (e *BadgerEngine) gcInterval() time.Duration {
	if e.cfg.Badger.GCInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(e.cfg.Badger.GCInterval)
	if err != nil {
		e.logger.Warn("invalid gc_interval, using default 10m", "value", e.cfg.Badger.GCInterval, "error", err)
		return 10 * time.Minute
	}
	return d
}

func (e *BadgerEngine) check(ctx context.Context) error {
	if e.closed.Load() {
		return ErrClosed
	}
	return ctx.Err()
}

// badgerLogger adapts slog.Logger to Badger's Logger interface. Badger's
// info output is chatty, so it is demoted to debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
