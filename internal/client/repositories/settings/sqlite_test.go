package settings

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/beiwe-client/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE device_settings (
  name  TEXT PRIMARY KEY,
  value TEXT NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestReplaceAll_ReplacesPreviousSet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, map[string]string{
		"gps":                    "true",
		"use_anonymized_hashing": "false",
	}))
	require.NoError(t, r.ReplaceAll(ctx, map[string]string{
		"accelerometer_frequency": "10",
	}))

	all, err := r.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"accelerometer_frequency": "10"}, all)
}

func TestGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.ReplaceAll(ctx, map[string]string{
		"consent_sections": `{"welcome":{"text":"hi"}}`,
	}))

	v, err := r.Get(ctx, "consent_sections")
	require.NoError(t, err)
	assert.JSONEq(t, `{"welcome":{"text":"hi"}}`, v)

	_, err = r.Get(ctx, "missing")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestAll_Empty(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	all, err := r.All(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestErrorsAreWrapped(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	require.NoError(t, db.Close())
	ctx := context.Background()

	require.ErrorContains(t, r.ReplaceAll(ctx, nil), "failed to clear device settings")
	_, err := r.Get(ctx, "gps")
	require.ErrorContains(t, err, "failed to get device setting gps")
	_, err = r.All(ctx)
	require.ErrorContains(t, err, "failed to select device settings")
}
