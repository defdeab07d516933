// Package logger builds *slog.Logger instances for accountd and its
// libraries.
//
// New applies a set of Option functions (format, level, output, static
// attributes) and wraps the resulting handler with a decorator that runs
// ContextExtractor callbacks on every record, so request-scoped values such
// as the request id end up in each log line without being passed around.
//
// Attribute helpers (Error, AccountID, Provider, Component, ...) keep key
// names consistent across packages.
//
//	log := logger.New(
//	    logger.WithEnvironment("production", "accountd"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "account registered", logger.AccountID(acc.ID))
package logger
