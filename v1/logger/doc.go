// Package logger provides structured logging for the sourcing service.
//
// LoggerClient wraps a zap JSON logger. Domain packages accept the Logger
// interface so tests can pass NewNop():
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info", ServiceName: "sourcing"})
//	log.Warn("legacy record skipped", nil, map[string]interface{}{
//	    "storage_id": id,
//	    "reason":     "missing phoneNumber",
//	})
//
// With fx, include logger.FXModule and supply a logger.Config.
package logger
