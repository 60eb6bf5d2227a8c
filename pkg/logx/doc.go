// Package logx wraps zerolog behind a small structured-logging API.
//
// Components take a logx.Logger by value at construction and treat the
// zero value as a no-op logger, so tests and optional wiring never need
// nil checks.
package logx
