package geocoding

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/apperror"
)

// DefaultLocation is used by StaticGeocoder when no API key is configured.
var DefaultLocation = entity.Location{Lat: 40.7484474, Lng: -73.9871516}

// StaticGeocoder returns a fixed location for every non-empty address.
type StaticGeocoder struct {
	Location entity.Location
}

func NewStaticGeocoder() *StaticGeocoder {
	return &StaticGeocoder{Location: DefaultLocation}
}

func (g *StaticGeocoder) Resolve(_ context.Context, address string) (entity.Location, error) {
	if strings.TrimSpace(address) == "" {
		return entity.Location{}, apperror.Geocode(http.StatusUnprocessableEntity, MsgNoLocation, errors.New("empty address"))
	}
	return g.Location, nil
}
