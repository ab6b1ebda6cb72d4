// Package telemetry provides observability for Callisto.
//
// # Components
//
//   - logging: Structured logging with secret redaction
//   - metrics: Prometheus metrics collection
//   - health: Health check endpoints for watch mode
//
// # Usage
//
//	// Build a logger from configuration
//	logger, err := logging.New(logging.Config{
//		Level:  cfg.Logging.Level,
//		Format: cfg.Logging.Format,
//	})
//
//	// Record metrics
//	collector := metrics.NewCollector(nil)
//	collector.RecordParse("ok", 12*time.Microsecond)
//
//	// Serve health endpoints alongside /metrics in watch mode
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("library", libraryCheck)
//	health.HTTPMiddleware(mux, checker, version, commit, buildTime)
//
// # Secret Redaction
//
// Git tokens and URL credentials are redacted from logs by default:
//
//   - https://token@github.com/org/repo → https://***@github.com/org/repo
//   - Bearer abc123 → Bearer ***
//   - token=abc123def → token=abc1***
package telemetry
