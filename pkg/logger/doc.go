// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, attribute constructors for the
// search layer, and transparent injection of values stored in context.Context.
//
// New creates a *slog.Logger configured by Option functions:
//
//   - WithFormat / WithTextFormatter / WithJSONFormatter: output format.
//   - WithLevel: minimum level; ParseLevel turns flag values into a slog.Level.
//   - WithAttr / WithService: static attributes applied to every record.
//   - WithContextExtractors / WithContextValue: attributes pulled from the
//     context on every Handle call.
//
// When extractors are registered the handler is wrapped with ContextHandler, which runs
// them before delegating.
//
// Attribute helpers keep key names consistent across packages:
//
//	log.DebugContext(ctx, "bulk request",
//	    logger.Operation("insert_many"),
//	    logger.Index("products"),
//	    logger.Count(len(docs)),
//	)
//
// Error and Errors return an empty attribute for nil errors, so
//
//	log.Info("scan finished", logger.Error(err))
//
// needs no nil check.
//
// Libraries that accept an optional logger default to Discard.
package logger
