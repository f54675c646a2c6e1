// Package service hosts tracking sessions.
//
// A Tracker owns the store of one session. It receives touch samples and
// screen activations through the TouchSink and ScreenObserver
// capabilities, requests snapshots from a Capturer, and on Flush renders
// every complete screen and hands the result to an export.Exporter.
//
// A Registry keeps many independent trackers side by side, keyed by
// session id. Sessions are never aggregated with each other.
package service
