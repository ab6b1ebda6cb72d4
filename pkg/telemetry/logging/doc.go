// Package logging builds structured loggers with secret redaction.
//
// All Callisto packages take a plain *slog.Logger in their constructors;
// this package is the single place that knows how to build one from
// configuration:
//
//	logger, err := logging.New(logging.Config{
//		Level:  "info",
//		Format: "json",
//	})
//	logger.Info("catalog loaded", "catalog", "base", "patterns", 12)
//
// # Secret Redaction
//
// By default every handler is wrapped in a RedactingHandler, which masks
// values under sensitive keys (token, secret, password, authorization)
// and scrubs embedded credentials from string values:
//
//	logger.Info("cloning", "url", "https://tok123@github.com/org/repo")
//	// url=https://***@github.com/org/repo
//
// # Context Fields
//
// Helpers attach run, catalog and pattern identifiers to a context so
// that downstream log lines carry them automatically:
//
//	ctx = logging.WithRunID(ctx, run.ID)
//	log := logging.FromContext(ctx, logger)
//	log.Info("run complete") // includes run_id
package logging
