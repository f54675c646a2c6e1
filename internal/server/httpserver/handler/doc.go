// Package handler implements the TouchMap HTTP API.
//
// Every JSON response uses the Response envelope. Errors carry the domain
// error code in the envelope and in the X-Error-Code header; the HTTP status
// is derived from the code's numeric suffix.
//
// Routes:
//
//   - GET /health, GET /ready
//   - GET /sessions, POST /sessions
//   - GET /sessions/{id}, DELETE /sessions/{id}
//   - POST /sessions/{id}/navigations
//   - POST /sessions/{id}/samples
//   - PUT /sessions/{id}/screens/{screen}/snapshot
//   - GET /sessions/{id}/screens/{screen}/heatmap.png
//   - POST /sessions/{id}/flush
//   - GET /exports, GET /exports/{session}/{screen}, DELETE /exports/{session}
package handler
