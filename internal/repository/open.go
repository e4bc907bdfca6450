package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/academic-records/pkg/config"
	"github.com/noah-isme/academic-records/pkg/database"
)

// OpenBackend connects the backend selected by cfg.Store.Backend.
func OpenBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Backend, error) {
	switch cfg.Store.Backend {
	case config.BackendBadger, "":
		db, err := database.NewBadger(cfg.Badger, logger)
		if err != nil {
			return nil, err
		}
		return NewBadgerBackend(db), nil
	case config.BackendRedis:
		client, err := database.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client), nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		backend := NewSQLBackend(db)
		if err := backend.EnsureSchema(ctx); err != nil {
			_ = backend.Close()
			return nil, err
		}
		return backend, nil
	}
	return nil, fmt.Errorf("unsupported store backend %q", cfg.Store.Backend)
}

// Open connects the configured backend and loads every collection into a new
// RecordStore.
func Open(ctx context.Context, cfg *config.Config, opts StoreOptions) (*RecordStore, error) {
	backend, err := OpenBackend(ctx, cfg, opts.Logger)
	if err != nil {
		return nil, err
	}
	if opts.KeyPrefix == "" {
		opts.KeyPrefix = cfg.Store.KeyPrefix
	}
	store := NewRecordStore(backend, opts)
	if err := store.Load(ctx); err != nil {
		_ = backend.Close()
		return nil, err
	}
	return store, nil
}
