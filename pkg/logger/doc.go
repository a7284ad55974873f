// Package logger provides a context-aware wrapper around Go's slog package
// adding functional options for configuration, helper attribute constructors,
// and transparent injection of values stored in context.Context.
//
// The package standardises structured logging across the SDK by exposing a
// single factory – New – that creates a *slog.Logger configured by a set of
// Option functions. These options allow you to:
//
//   - Select an output format (text or json)
//   - Set the minimum log level
//   - Supply default slog.Attr values applied to every record
//   - Register ContextExtractor callbacks that inject attributes pulled from a
//     context value (for example a request id) every time Handle is invoked.
//
// # Architecture
//
// New determines the concrete slog.Handler implementation –
// slog.NewTextHandler or slog.NewJSONHandler – based on the configured Format,
// then wraps it with a decorator responsible for executing any registered
// ContextExtractor callbacks before delegating to the underlying handler.
//
// Helper constructors such as ExperimentKey, VariationKey and Error live in
// attr.go and return commonly-used slog.Attr instances to keep attribute
// naming consistent across the codebase.
//
// # Usage
//
//	import "github.com/expkit/expkit/pkg/logger"
//
//	func main() {
//	    log := logger.New(
//	        logger.WithDevelopment(),
//	        logger.WithContextValue("request_id", ctxKeyRequestID),
//	    )
//
//	    log.Info("assigned variation",
//	        logger.UserID("visitor-1"),
//	        logger.ExperimentKey("checkout_redesign"),
//	        logger.VariationKey("treatment"),
//	    )
//	}
//
// # Error Handling
//
// The Error helper produces an attribute only when the supplied error is
// non-nil, allowing calls like:
//
//	log.Info("profile save skipped", logger.Error(err))
//
// without an additional nil check.
package logger
