package config

import "strings"

// Sanitize returns a copy of cfg with secrets masked, for logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg
	sanitized.Tracking.Phases = append([]string(nil), cfg.Tracking.Phases...)

	if sanitized.Export.EncryptionKey != "" {
		sanitized.Export.EncryptionKey = maskSecret(sanitized.Export.EncryptionKey)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
