package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// BadgerBackend keeps collections in an embedded badger database.
type BadgerBackend struct {
	db *badger.DB
}

// NewBadgerBackend wraps an opened badger database.
func NewBadgerBackend(db *badger.DB) *BadgerBackend {
	return &BadgerBackend{db: db}
}

// Load reads the payload stored under key.
func (b *BadgerBackend) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var payload []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("badger get %s: %w", key, err)
	}
	return payload, nil
}

// Ping reports whether the database is still open.
func (b *BadgerBackend) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if b.db.IsClosed() {
		return errors.New("badger database is closed")
	}
	return nil
}

// Save replaces the payload stored under key.
func (b *BadgerBackend) Save(ctx context.Context, key string, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), payload)
	}); err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

// Close releases the database.
func (b *BadgerBackend) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}
