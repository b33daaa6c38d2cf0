// Package logging provides structured logging for rangeview.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across the entire application.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig in config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, "1.0.0")
//	logger.Info("connected to broker", "broker", addr)
//	logger.Warn("connect attempt failed", "error", err, "retry_in", backoff)
//
// Components that log take a small interface (Debug/Info/Warn/Error) rather
// than *Logger, so they can run silently in tests.
//
// # Security
//
// Never log broker passwords or the InfluxDB token.
package logging
