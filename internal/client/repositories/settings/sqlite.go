package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/dmitrijs2005/beiwe-client/internal/dbx"
)

// SQLiteRepository implements Repository over the device_settings table.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll is not atomic on its own; run it through dbx.WithTx when the
// caller needs all-or-nothing.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, values map[string]string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM device_settings`); err != nil {
		return fmt.Errorf("failed to clear device settings: %w", err)
	}
	for name, value := range values {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO device_settings (name, value) VALUES (?, ?)`, name, value)
		if err != nil {
			return fmt.Errorf("failed to insert device setting %s: %w", name, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, name string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM device_settings WHERE name = ?`, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", common.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get device setting %s: %w", name, err)
	}
	return value, nil
}

func (r *SQLiteRepository) All(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name, value FROM device_settings`)
	if err != nil {
		return nil, fmt.Errorf("failed to select device settings: %w", err)
	}
	defer rows.Close()

	result := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, err
		}
		result[name] = value
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
