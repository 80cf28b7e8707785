// Package server holds the HTTP server configuration.
//
// The server itself is assembled in cmd/start.go: a Fiber app with the
// rayid and auth middleware, the feature loader, swagger and metrics.
package server
