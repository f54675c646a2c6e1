// Package command defines the touchmap-cli commands.
//
// Offline commands work on local files and export stores:
//
//   - render: draw a heatmap from a snapshot and a recorded sample file
//   - exports list|get|delete|backup|restore: inspect an export store
//
// Remote commands talk to a running touchmap-server:
//
//   - session list|get|flush|close|heatmap
//   - health
//
// Results are printed as a table, JSON or YAML (--output).
package command
