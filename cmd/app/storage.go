package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-crud-api/internal/config"
	"github.com/BuzzLyutic/task-crud-api/internal/repo"
)

const connectTimeout = 10 * time.Second

// storage is an opened task collection together with its schema bootstrap
// and shutdown hooks.
type storage struct {
	repo    repo.TaskRepository
	migrate func(ctx context.Context) error
	close   func()
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (*storage, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	switch cfg.StorageDriver {
	case config.DriverMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, fmt.Errorf("connect to mongo: %w", err)
		}
		if err := client.Ping(ctx, readpref.Primary()); err != nil {
			client.Disconnect(context.Background())
			return nil, fmt.Errorf("ping mongo: %w", err)
		}
		logger.Info("Connected to MongoDB", zap.String("database", cfg.MongoDatabase))

		r := repo.NewMongoTaskRepo(client.Database(cfg.MongoDatabase))
		return &storage{
			repo:    r,
			migrate: r.EnsureSchema,
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil {
					logger.Error("Failed to disconnect from MongoDB", zap.Error(err))
				}
			},
		}, nil

	case config.DriverPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		logger.Info("Connected to Postgres")

		return &storage{
			repo: repo.NewPostgresTaskRepo(pool),
			migrate: func(ctx context.Context) error {
				return repo.MigratePostgres(ctx, pool, logger)
			},
			close: pool.Close,
		}, nil

	case config.DriverMemory:
		logger.Warn("Using in-memory storage, data is lost on restart")
		return &storage{
			repo:    repo.NewMemoryTaskRepo(),
			migrate: func(context.Context) error { return nil },
			close:   func() {},
		}, nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}
