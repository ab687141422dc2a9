// Package logging provides the structured logging interface used across the
// reconstruction engine. Components depend on Logger; the zerolog adapter is
// the production backend and the standard library adapter is kept for
// callers that already hold a *log.Logger.
package logging
