package storage

import (
	"context"
	"io"
)

// KVEngine is an embedded key-value store.
//
// Implementations must be safe for concurrent use.
type KVEngine interface {
	// Get retrieves a value by key.
	// Returns ErrKeyNotFound if key doesn't exist.
	Get(ctx context.Context, key []byte) ([]byte, error)

	// Set stores a key-value pair.
	Set(ctx context.Context, key, value []byte) error

	// SetMany stores several pairs in one transaction.
	SetMany(ctx context.Context, entries []Entry) error

	// Delete removes a key.
	Delete(ctx context.Context, key []byte) error

	// DeletePrefix removes every key with the given prefix.
	DeletePrefix(ctx context.Context, prefix []byte) error

	// Scan iterates over keys with a given prefix in key order.
	// Callback returns false to stop iteration.
	Scan(ctx context.Context, prefix []byte, fn func(key, value []byte) bool) error

	// Backup writes a full backup stream to w.
	Backup(ctx context.Context, w io.Writer) error

	// Restore loads a backup stream produced by Backup.
	Restore(ctx context.Context, r io.Reader) error

	// GC reclaims space. Returns the number of value-log files rewritten.
	GC(ctx context.Context) (int, error)

	// Stats returns storage statistics.
	Stats(ctx context.Context) (*KVStats, error)

	// Close gracefully shuts down the engine.
	Close() error
}

// Entry is a key-value pair for batch writes.
type Entry struct {
	Key   []byte
	Value []byte
}

// KVStats contains storage engine statistics.
type KVStats struct {
	// TotalSize is the total disk usage in bytes.
	TotalSize uint64

	// LSMSize is the LSM tree size.
	LSMSize uint64

	// ValueLogSize is the value log size.
	ValueLogSize uint64

	// LastGCTime is the last GC run timestamp (Unix milliseconds).
	LastGCTime int64

	// GCRewrites is the total number of value-log files rewritten by GC.
	GCRewrites uint64
}

// KVConfig configures an embedded KV engine.
type KVConfig struct {
	// Dir is the storage directory. Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in memory (tests and dry runs).
	InMemory bool

	// ReadOnly opens an existing database without write access.
	ReadOnly bool

	Badger BadgerConfig
}

// BadgerConfig contains Badger-specific tuning parameters.
type BadgerConfig struct {
	// GCInterval is the interval between automatic GC runs.
	// Default: 10m. Zero or negative disables automatic GC.
	GCInterval string

	// GCThreshold is the discard ratio (0.0-1.0) at which a value-log
	// file is rewritten.
	// Default: 0.5
	GCThreshold float64

	// CacheSize is the block cache size in bytes.
	// Default: 32MB
	CacheSize int64

	// ValueLogFileSize is the max value log file size in bytes.
	// Default: 256MB
	ValueLogFileSize int64

	// SyncWrites enables fsync after each write.
	// Default: true; exports are written rarely and must survive a crash.
	SyncWrites bool
}

// DefaultKVConfig returns the default KV configuration.
func DefaultKVConfig(dir string) KVConfig {
	return KVConfig{
		Dir:    dir,
		Badger: DefaultBadgerConfig(),
	}
}

// DefaultBadgerConfig returns the default Badger configuration.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		GCInterval:       "10m",
		GCThreshold:      0.5,
		CacheSize:        32 << 20,
		ValueLogFileSize: 256 << 20,
		SyncWrites:       true,
	}
}
