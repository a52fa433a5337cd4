// Package keys allocates surrogate keys and threads them from parent records
// into the line records that reference them.
//
// Allocation reads MAX(column) once per table inside the job transaction.
// New keys are start+ordinal over a compacted slice, so a record is new
// exactly when its key is greater than or equal to the start it was given.
// Every function returns fresh slices; inputs are never modified.
package keys
