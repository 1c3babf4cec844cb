// Package models defines the records persisted by the device-side client.
package models

import "time"

// DebugEntry is one line of the persisted debug log. The study team reads it
// to explain gaps in uploaded data.
type DebugEntry struct {
	ID        int64
	CreatedAt time.Time
	Message   string
}

// CrashEvent records an unexpected condition worth reporting: a bogus
// registration payload, a batch that ran out of time, a broken upload URL.
type CrashEvent struct {
	ID        string
	CreatedAt time.Time
	Message   string
}
