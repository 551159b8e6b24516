// Package store persists the task list as one serialized blob under a fixed
// key on a durable key-value medium.
package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Makepad-fr/todolist/internal/config"
	"github.com/Makepad-fr/todolist/internal/store/jsonstore"
	"github.com/Makepad-fr/todolist/internal/store/memstore"
	"github.com/Makepad-fr/todolist/internal/store/redisstore"
	"github.com/Makepad-fr/todolist/internal/store/sqlitestore"
)

// KV is the durable key-value medium. Get reports found=false for an absent
// key; that is not an error.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Open returns the backend selected by cfg.Driver.
func Open(ctx context.Context, cfg config.Storage, log zerolog.Logger) (KV, error) {
	switch cfg.Driver {
	case config.DriverFile, "":
		return jsonstore.Open(cfg.DataDir, jsonstore.WithLogger(log))
	case config.DriverSQLite:
		return sqlitestore.Open(ctx, cfg.DataDir)
	case config.DriverRedis:
		return redisstore.Open(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	case config.DriverMemory:
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown storage driver: %q", cfg.Driver)
}
