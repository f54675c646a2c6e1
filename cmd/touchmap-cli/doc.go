// Package main provides the entry point for touchmap-cli.
//
// touchmap-cli renders heatmaps offline, maintains export stores and talks
// to a running touchmap-server:
//
//	touchmap-cli render --snapshot home.png --samples touches.json --out heat.png
//	touchmap-cli exports --badger-dir ./heatmaps.db list
//	touchmap-cli -s 127.0.0.1:7080 session list -o json
package main
