package geocoding

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/domain/entity"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// Resolver is the contract shared by the geocoders in this package.
type Resolver interface {
	Resolve(ctx context.Context, address string) (entity.Location, error)
}

// CachedGeocoder memoizes successful lookups in Redis. Cache errors are
// logged and fall through to Next; failed lookups are never cached.
type CachedGeocoder struct {
	Next   Resolver
	Redis  *redis.Client
	TTL    time.Duration
	Logger *logrus.Logger
}

func NewCachedGeocoder(next Resolver, rdb *redis.Client, ttl time.Duration, logger *logrus.Logger) Resolver {
	if rdb == nil {
		return next
	}
	return &CachedGeocoder{Next: next, Redis: rdb, TTL: ttl, Logger: logger}
}

func cacheKey(address string) string {
	return "geo:addr:" + strings.ToLower(strings.Join(strings.Fields(address), " "))
}

func (g *CachedGeocoder) Resolve(ctx context.Context, address string) (entity.Location, error) {
	key := cacheKey(address)
	var loc entity.Location
	found, err := helpers.RedisGetJSON(ctx, g.Redis, key, &loc)
	if err != nil && g.Logger != nil {
		g.Logger.WithError(err).WithField("key", key).Warn("geocode cache read failed")
	}
	if found {
		return loc, nil
	}

	loc, err = g.Next.Resolve(ctx, address)
	if err != nil {
		return entity.Location{}, err
	}
	if err := helpers.RedisSetJSON(ctx, g.Redis, key, loc, g.TTL); err != nil && g.Logger != nil {
		g.Logger.WithError(err).WithField("key", key).Warn("geocode cache write failed")
	}
	return loc, nil
}
