package credstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // SQLite driver
)

type credentialRow struct {
	bun.BaseModel `bun:"table:credentials,alias:c"`

	Key       string    `bun:"name,pk,type:text,notnull"`
	Value     string    `bun:"value,type:text,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}

// SQLiteStore keeps keys in a single sqlite table.
type SQLiteStore struct {
	db *bun.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLiteStore opens (or creates) the database at dsn and ensures the table exists.
func OpenSQLiteStore(ctx context.Context, dsn string) (*SQLiteStore, error) {
	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// single writer connection
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.NewCreateTable().
		Model((*credentialRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("create credentials table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var row credentialRow
	err := s.db.NewSelect().
		Model(&row).
		Where("name = ?", key).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get credential %s: %w", key, err)
	}
	return row.Value, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	row := &credentialRow{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	_, err := s.db.NewInsert().
		Model(row).
		On("CONFLICT (name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert credential %s: %w", key, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := s.db.NewDelete().
		Model((*credentialRow)(nil)).
		Where("name IN (?)", bun.In(keys)).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete credentials: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
