// Package main provides the entry point for touchmap-server.
//
// touchmap-server hosts touch tracking sessions over HTTP. Clients report
// screen navigations, touch samples and screen snapshots; the server renders
// one heatmap per screen when a session is flushed or closed and hands it to
// the configured export store.
//
// Usage:
//
//	touchmap-server -config /etc/touchmap/server.yaml
//	TOUCHMAP_SERVER_HTTP_ADDR=0.0.0.0:7080 touchmap-server
//
// The log level is reloaded when the configuration file changes. Every
// other setting applies at the next start.
package main
