// Package writer bulk loads the new rows of a batch into the target tables.
//
// Rows are grouped per table and loaded with COPY, either through the binary
// protocol or through a '$' delimited staging file streamed as COPY FROM STDIN.
// Missing numeric values become the -9999 sentinel in both modes.
package writer
