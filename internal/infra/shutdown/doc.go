// Package shutdown runs named cleanup hooks when the process is asked to
// stop, by SIGINT or SIGTERM or by an explicit Trigger.
//
// Hooks run in reverse registration order under one shared timeout, so
// the HTTP listener registered last stops accepting input before the
// sessions registered first are flushed.
package shutdown
