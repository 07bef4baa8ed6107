package repository

import (
	"context"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	List(ctx context.Context) ([]*entity.User, error)
	// AppendPlace atomically pushes placeID onto the user's places.
	AppendPlace(ctx context.Context, userID, placeID string) error
	// RemovePlace atomically pulls placeID from the user's places.
	RemovePlace(ctx context.Context, userID, placeID string) error
}
