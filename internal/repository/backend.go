package repository

import (
	"context"
	"errors"
)

// ErrSnapshotNotFound is returned by a Backend when no payload exists under a key.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Backend stores whole collections as opaque payloads under fixed keys.
// Implementations must make Save durable before returning.
type Backend interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, payload []byte) error
	Close() error
}

// Pinger is implemented by backends that can report connection health.
type Pinger interface {
	Ping(ctx context.Context) error
}
