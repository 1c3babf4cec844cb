package messages

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/models"
	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Insert(ctx context.Context, m models.StoredMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO messages (id, content, received_on) VALUES (?, ?, ?)`,
		m.ID, m.Content, m.ReceivedOn.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.StoredMessage, error) {
	var m models.StoredMessage
	var ms int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, content, received_on FROM messages WHERE id = ?`, id).
		Scan(&m.ID, &m.Content, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message: %w", err)
	}
	m.ReceivedOn = time.UnixMilli(ms)
	return &m, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.StoredMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, content, received_on FROM messages ORDER BY received_on, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select messages: %w", err)
	}
	defer rows.Close()

	var result []models.StoredMessage
	for rows.Next() {
		var m models.StoredMessage
		var ms int64
		if err := rows.Scan(&m.ID, &m.Content, &ms); err != nil {
			return nil, err
		}
		m.ReceivedOn = time.UnixMilli(ms)
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
