// Package output renders touchmap-cli results as tables, JSON or YAML.
//
// Table output derives headers from json tags. Fields tagged
// `table:"wide"` appear only with --wide and `table:"-"` never appears.
// ProgressBar reports byte counts for long transfers such as backups.
package output
