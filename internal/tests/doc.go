// Package tests holds end-to-end tests that run touchmap-server components
// together: HTTP intake, session flushing and the export store.
package tests
