// Package app provides the application service layer.
//
// Orchestrates the snippet use cases: create, read (with expiry and
// burn-after-read), highlight and the periodic expiry sweep. Depends on
// domain interfaces, not concrete implementations.
package app
