package compiler

import "go/scanner"

// Error and ErrorList are reused from go/scanner rather than hand-rolled:
// a positioned-message accumulator with sorting and a combined Error()
// string is exactly what compile-time diagnostics need, and go/scanner
// already gets it right.
type (
	Error     = scanner.Error
	ErrorList = scanner.ErrorList
)
