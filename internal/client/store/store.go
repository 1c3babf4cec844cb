package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/beiwe-client/internal/client/migrations"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/diagnostics"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/messages"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/beiwe-client/internal/client/repositories/settings"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Store is safe for concurrent use.
type Store struct {
	db *sql.DB

	Metadata    metadata.Repository
	Settings    settings.Repository
	Diagnostics diagnostics.Repository
	Messages    messages.Repository

	now func() time.Time

	// guards lazy creation of the hashing salt and iteration count
	hashMu sync.Mutex
}

// RunMigrations applies the embedded client schema.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: SQLite serializes writers anyway and ":memory:" is
	// per-connection.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	return &Store{
		db:          db,
		Metadata:    metadata.NewSQLiteRepository(db),
		Settings:    settings.NewSQLiteRepository(db),
		Diagnostics: diagnostics.NewSQLiteRepository(db),
		Messages:    messages.NewSQLiteRepository(db),
		now:         time.Now,
	}
}

// DB exposes the underlying handle for transactions.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }
