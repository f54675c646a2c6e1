// Package domain defines the core domain models for TouchMap.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - TouchSample: a single positional touch in image space
//   - Provenance: how a screen was reached (predecessor visit counts)
//   - Record: everything tracked for one screen of a session
//   - Errors: domain-specific error definitions
//
// Records are owned by the session store; everything handed out of the
// store is a deep copy produced by Record.Clone.
package domain
