// Package logger provides structured logging for the invoice mailer:
// a JSON slog factory, per-call context attribute extraction (order id),
// and optional Sentry error reporting with graceful fallback when no DSN
// is configured.
package logger
