// Package errors provides the structured error type shared by every dbunit
// package. Each failure carries a machine-readable code so callers can tell
// an invalid fixture source from an out-of-range cell read, a broken
// connection, a failing statement or a dataset assertion.
package errors
