package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

const snapshotSchema = `CREATE TABLE IF NOT EXISTS record_snapshots (
    key        TEXT PRIMARY KEY,
    payload    TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`

type snapshotRow struct {
	Key       string    `db:"key"`
	Payload   string    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}

// SQLBackend keeps collections in a single key/payload table.
type SQLBackend struct {
	db *sqlx.DB
}

// NewSQLBackend wraps an opened database handle.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

// EnsureSchema creates the snapshot table when missing.
func (b *SQLBackend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.ExecContext(ctx, snapshotSchema); err != nil {
		return fmt.Errorf("create record_snapshots: %w", err)
	}
	return nil
}

// Load reads the payload stored under key.
func (b *SQLBackend) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT payload FROM record_snapshots WHERE key = $1`
	var payload string
	if err := b.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	return []byte(payload), nil
}

// Ping checks the database connection.
func (b *SQLBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Save upserts the payload stored under key.
func (b *SQLBackend) Save(ctx context.Context, key string, payload []byte) error {
	const query = `INSERT INTO record_snapshots (key, payload, updated_at)
VALUES (:key, :payload, :updated_at)
ON CONFLICT (key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	row := snapshotRow{Key: key, Payload: string(payload), UpdatedAt: time.Now().UTC()}
	if _, err := b.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (b *SQLBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
