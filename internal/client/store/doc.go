// Package store is the device's persistent data: the single SQLite database
// that holds credentials, the server-issued key, device settings, hashing
// parameters, diagnostics and stored push messages.
//
// Store wraps the per-table repositories with the typed operations the rest
// of the client needs. Every getter reads the database, so a value written
// by one component (for example a new password after registration) is seen
// by the next request built anywhere else.
//
// Open runs the embedded goose migrations before returning.
package store
