package diagnostics

import (
	"context"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
)

// Repository stores the debug and crash logs.
type Repository interface {
	// AppendDebugLog adds one line; e.ID is ignored and assigned by storage.
	AppendDebugLog(ctx context.Context, e models.DebugEntry) error

	// DebugLog returns the newest limit lines in chronological order.
	// A limit <= 0 returns everything.
	DebugLog(ctx context.Context, limit int) ([]models.DebugEntry, error)

	// AddCrash records one crash event.
	AddCrash(ctx context.Context, e models.CrashEvent) error

	// Crashes returns all crash events ordered by time.
	Crashes(ctx context.Context) ([]models.CrashEvent, error)
}
