package postgres

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

// Open connects a pool, applies pending migrations and returns the store.
func Open(ctx context.Context, dsn, migrationsDir string, maxConns, minConns int32, maxConnLife time.Duration, logger *logrus.Logger) (repository.Store, error) {
	pool, err := NewPool(ctx, dsn, maxConns, minConns, maxConnLife)
	if err != nil {
		return repository.Store{}, err
	}
	if err := RunMigrations(dsn, migrationsDir, logger); err != nil {
		pool.Close()
		return repository.Store{}, err
	}
	return NewStore(pool), nil
}
