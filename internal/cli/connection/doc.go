// Package connection is the touchmap-cli client for a running touchmap-server.
//
// Responses are unwrapped from the server's JSON envelope; error envelopes
// become *APIError values carrying the server's error code.
package connection
