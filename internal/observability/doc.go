// Package observability provides structured logging and metrics for the
// Planifika admin API.
//
// This package implements:
//   - zap logger construction from configuration
//   - Prometheus collectors for HTTP traffic and authorization decisions
//   - Request ID propagation into log fields
package observability
