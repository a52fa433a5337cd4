// Package batch holds the in-memory records of one load job.
//
// A batch is created from the parsed input, flows through the resolve and key
// phases, and is discarded after the job commits or rolls back. Phases never
// modify the slices they receive; each phase returns fresh slices, so a record
// seen by one phase cannot change under another.
//
// Records are correlated by FileRow, a batch-local identifier carried on every
// FileRecord and LineRecord. It is independent of slice position and of the
// database surrogate key, so dropping rows never shifts a correlation.
package batch
