// Package logging provides structured logging using uber/zap.
//
// Two encodings are supported:
//   - Production: JSON lines for machine parsing
//   - Development: colored console output
//
// When the engine serves the stdio tool protocol, stdout belongs to the
// protocol stream, so StdioConfig routes every log line to stderr.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	logger.Info("Catalogue loaded", zap.Int("entries", n))
//	search := logger.Component("search")
//	search.ForRequest(ctx).Debug("Query ranked")
package logging
