package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/google/uuid"
)

// AppendDebugLog writes "<unix millis> <msg>" to the persisted debug log.
func (s *Store) AppendDebugLog(ctx context.Context, msg string) error {
	now := s.now()
	return s.Diagnostics.AppendDebugLog(ctx, models.DebugEntry{
		CreatedAt: now,
		Message:   fmt.Sprintf("%d %s", now.UnixMilli(), msg),
	})
}

// RecordCrash stores a crash event and returns its id.
func (s *Store) RecordCrash(ctx context.Context, msg string) (string, error) {
	id := uuid.NewString()
	err := s.Diagnostics.AddCrash(ctx, models.CrashEvent{
		ID:        id,
		CreatedAt: s.now(),
		Message:   msg,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// DebugLog returns the newest limit debug lines, oldest first.
func (s *Store) DebugLog(ctx context.Context, limit int) ([]models.DebugEntry, error) {
	return s.Diagnostics.DebugLog(ctx, limit)
}

// Crashes returns every recorded crash event.
func (s *Store) Crashes(ctx context.Context) ([]models.CrashEvent, error) {
	return s.Diagnostics.Crashes(ctx)
}
