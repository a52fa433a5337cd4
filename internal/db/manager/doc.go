// Package manager creates and drops the target database of a load job.
//
// Database names are quoted with pgx.Identifier.Sanitize, so names with
// spaces, quotes or semicolons are handled safely:
//
//	mgr := manager.New()
//	exists, err := mgr.Exists(ctx, pool, "mv_gfs")
//	if !exists {
//	    err = mgr.Create(ctx, pool, "mv_gfs")
//	}
//
// CREATE DATABASE cannot run inside a transaction block, so every call goes
// straight to the maintenance connection.
package manager
