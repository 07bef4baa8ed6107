package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/go-places-api/internal/domain/repository"
)

// NewStore bundles the pgx-backed repositories. Close releases the pool.
func NewStore(pool *pgxpool.Pool) repository.Store {
	return repository.Store{
		Users:  NewUserRepository(pool),
		Places: NewPlaceRepository(pool),
		Tx:     NewTxManager(pool),
		Close:  pool.Close,
	}
}
