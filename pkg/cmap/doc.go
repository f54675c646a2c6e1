// Package cmap provides a concurrent map sharded by murmur3 key hash.
//
// Usage:
//
//	m := cmap.NewWithShards[*Tracker](32)
//	m.Set("ths-...", tracker)
//	t, ok := m.Get("ths-...")
//
// Thread Safety:
//
// All operations are thread-safe. Reads take a shard read lock, writes
// take the shard write lock. Range visits shards one at a time and so
// does not observe a single consistent view.
package cmap
