package application

import (
	"context"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
)

// Geocoder maps a postal address to coordinates. Errors are returned to the
// client unchanged, so implementations should return *apperror.Error.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (entity.Location, error)
}

// PlaceIndexer keeps a searchable copy of places. Writes carry a version
// (the write's time in Unix nanoseconds); a write older than the one already
// applied to the same place is ignored.
type PlaceIndexer interface {
	IndexPlace(ctx context.Context, p *entity.Place, version int64) error
	DeletePlace(ctx context.Context, id string, version int64) error
	SearchPlaces(ctx context.Context, q string, size int) ([]*entity.Place, error)
}

// EventPublisher publishes JSON messages.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
