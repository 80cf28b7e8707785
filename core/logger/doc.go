// Package logger provides the structured logging facility based on Zap.
//
// Debug level selects zap's development configuration (ISO8601 timestamps,
// caller info); every other level uses the production configuration with
// the level applied explicitly, so "warn" really drops info lines.
//
// # Context Awareness
//
// WithRayID extracts the RayID set by the rayid middleware from a Fiber
// context and attaches it to the log entry, so every line logged while
// serving one request can be correlated.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info", Format: "json"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
