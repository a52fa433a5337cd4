// Package logging provides concrete implementations of the metdbload.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: writes prefixed lines to stderr (or any io.Writer)
//   - NullLogger: discards all messages
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
