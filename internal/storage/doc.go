// Package storage provides the embedded key-value engine used to persist
// exported heatmaps.
//
// KVEngine abstracts the engine; BadgerEngine implements it on Badger v3
// with periodic value-log GC, Prometheus size gauges and streaming
// backup/restore. Live tracking state never lives here: it is held by
// package memory until a session is flushed.
package storage
