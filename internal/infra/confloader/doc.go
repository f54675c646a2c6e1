// Package confloader loads configuration with koanf.
//
// Sources are applied in order, later ones overriding earlier ones:
//
//  1. Values already present in the target struct (defaults)
//  2. A YAML file
//  3. Environment variables (TOUCHMAP_ prefix)
//  4. Explicit overrides from LoadMap, usually command-line flags
//
// Environment names are matched against the koanf tags of the target,
// so TOUCHMAP_EXPORT_BADGER_DIR sets export.badger_dir even though the
// key itself contains an underscore.
//
// Watcher reports edits to a config file so a running server can reload
// the settings that support it.
package confloader
