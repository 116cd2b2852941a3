// Package errors provides structured, coded errors for inkpad.
//
// Every error carries a registered code (e.g., "E101") that maps to a
// category and a short message. Callers add detail, a fix hint, or a
// wrapped cause:
//
//	err := errors.New("E102").
//	    WithDetail("pen.thickness must be between 1 and 100").
//	    WithSuggestion("Use a value such as 4")
//
// Codes survive wrapping, so HTTP handlers can map them back to status
// codes with CodeOf or HasCode.
//
// # Categories
//
//   - runtime: reactive value failures (listener panics)
//   - settings: unknown setting paths and invalid values
//   - store: snapshot persistence
//   - config: inkpad.json loading and validation
package errors
