// Package diagnostics persists the two device-side logs the study team can
// ask a participant to share.
//
// # Debug log
//
// An append-only list of timestamped lines (table debug_log). Entries are
// returned in insertion order; the autoincrement id is the tiebreaker when two
// lines share a millisecond.
//
// # Crash log
//
// Discrete events (table crash_log) keyed by a caller-supplied id, typically a
// UUID. Used for conditions that are not failures of the device itself but are
// worth reporting: a registration response the server should never send, or a
// batch upload that hit its time ceiling.
//
// Timestamps are stored as Unix milliseconds.
//
// Typical usage
//
//	repo := diagnostics.NewSQLiteRepository(db)
//	_ = repo.AppendDebugLog(ctx, models.DebugEntry{CreatedAt: now, Message: "..."})
//	lines, _ := repo.DebugLog(ctx, 100)
package diagnostics
