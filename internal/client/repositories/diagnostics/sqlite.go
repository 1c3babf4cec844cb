package diagnostics

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) AppendDebugLog(ctx context.Context, e models.DebugEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO debug_log (created_at, message) VALUES (?, ?)`,
		e.CreatedAt.UnixMilli(), e.Message)
	if err != nil {
		return fmt.Errorf("failed to append debug log: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DebugLog(ctx context.Context, limit int) ([]models.DebugEntry, error) {
	if limit <= 0 {
		limit = -1
	}
	query := `SELECT id, created_at, message FROM (
			SELECT id, created_at, message FROM debug_log ORDER BY id DESC LIMIT ?
		) ORDER BY id ASC`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select debug log: %w", err)
	}
	defer rows.Close()

	var result []models.DebugEntry
	for rows.Next() {
		var e models.DebugEntry
		var ms int64
		if err := rows.Scan(&e.ID, &ms, &e.Message); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) AddCrash(ctx context.Context, e models.CrashEvent) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO crash_log (id, created_at, message) VALUES (?, ?, ?)`,
		e.ID, e.CreatedAt.UnixMilli(), e.Message)
	if err != nil {
		return fmt.Errorf("failed to add crash event: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Crashes(ctx context.Context) ([]models.CrashEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, created_at, message FROM crash_log ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select crash log: %w", err)
	}
	defer rows.Close()

	var result []models.CrashEvent
	for rows.Next() {
		var e models.CrashEvent
		var ms int64
		if err := rows.Scan(&e.ID, &ms, &e.Message); err != nil {
			return nil, err
		}
		e.CreatedAt = time.UnixMilli(ms)
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
