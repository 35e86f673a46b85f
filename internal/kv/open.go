package kv

import (
	"fmt"

	"chronik/internal/config"
	"chronik/internal/logger"

	"github.com/redis/go-redis/v9"
)

// Open builds the backend named by cfg.Storage.Driver.
func Open(cfg *config.Config) (Backend, error) {
	driver := cfg.Storage.Driver
	logger.Info("storage.open", "driver", driver, "path", cfg.Storage.Path)
	switch driver {
	case "memory":
		return NewMemory(), nil
	case "sqlite":
		return OpenSQLite(cfg.Storage.Path)
	case "pebble":
		return OpenPebble(cfg.Storage.Path)
	case "mysql":
		db, err := cfg.OpenGormDB()
		if err != nil {
			return nil, err
		}
		return NewGorm(db)
	case "redis":
		return NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
