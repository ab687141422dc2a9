// Package apperrors defines the structured error types surfaced by the
// reconstruction engine and the CLI, and maps them to process exit codes.
//
// Wrapping types implement Unwrap so errors.Is and errors.As see through
// them.
package apperrors
