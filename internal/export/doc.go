// Package export persists rendered heatmaps.
//
// An Artifact is one screen's final image plus what is known about how
// the screen was reached. Backends write artifacts somewhere durable and
// list or fetch them back:
//
//   - DirExporter: <dir>/<session>/<screen>.png with a JSON sidecar
//   - BadgerExporter: PNG bytes and JSON metadata in a Badger database
//   - Nop: discards everything
//
// Both durable backends can seal image bytes at rest with
// pkg/crypto/adaptive. Every stored image carries a BLAKE2b-256 checksum
// of its PNG encoding that is verified on read.
package export
