// Package memory provides mutex-guarded, map-backed implementations of the
// store interfaces. It backs the "memory" database driver used for local
// development and end-to-end tests; data is lost when the process exits.
//
// Stored values are copied on the way in and on the way out so callers can
// never alias store state.
package memory
