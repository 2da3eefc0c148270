package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/pkg/cache"
	"github.com/noah-isme/student-roster/pkg/config"
	"github.com/noah-isme/student-roster/pkg/database"
	"github.com/noah-isme/student-roster/pkg/storage"
)

// OpenRecordStore connects the backend selected by cfg.Store.Driver. The
// returned closer releases any connection the store holds and is never nil.
func OpenRecordStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (RecordStore, func() error, error) {
	noop := func() error { return nil }
	log := logger.With(zap.String("store", cfg.Store.Driver))

	switch cfg.Store.Driver {
	case config.StoreMemory:
		log.Warn("using in-memory record store; data is lost on exit")
		return NewMemoryStore(), noop, nil
	case config.StoreFile, "":
		files, err := storage.NewLocalStorage(cfg.Store.FileDir)
		if err != nil {
			return nil, noop, err
		}
		log.Info("record store ready", zap.String("dir", cfg.Store.FileDir))
		return NewFileStore(files), noop, nil
	case config.StoreSQLite, config.StorePostgres:
		open := database.NewPostgres
		if cfg.Store.Driver == config.StoreSQLite {
			open = func(config.DatabaseConfig) (*sqlx.DB, error) { return database.NewSQLite(cfg.SQLite) }
		}
		db, err := open(cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		store := NewSQLStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, noop, err
		}
		log.Info("record store ready")
		return store, store.Close, nil
	case config.StoreRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis, cfg.Store.Timeout)
		if err != nil {
			return nil, noop, err
		}
		log.Info("record store ready", zap.String("prefix", cfg.Redis.KeyPrefix))
		store := NewRedisStore(client, cfg.Redis.KeyPrefix)
		return store, store.Close, nil
	case config.StoreMongo:
		client, err := database.NewMongo(cfg.Mongo)
		if err != nil {
			return nil, noop, err
		}
		log.Info("record store ready", zap.String("collection", cfg.Mongo.Collection))
		store := NewMongoStore(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		return store, store.Close, nil
	default:
		return nil, noop, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
}
