// Package logger wraps zap for the stools commands:
//   - a global sugared logger writing console lines to stderr,
//   - context helpers (ToContext/FromContext/WithName/WithKV),
//   - level parsing so --log-level and settings can share one vocabulary,
//   - convenience functions (Infof, WarnKV, etc.).
//
// Services take a context and pull the logger out of it, so a download batch
// or a pipeline stage can scope its fields once and every nested call
// inherits them.
package logger
