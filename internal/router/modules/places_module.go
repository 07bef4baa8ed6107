package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
)

// PlacesModule mounts:
//
//	GET    /api/places/search?q=&size=
//	GET    /api/places/user/:uid
//	GET    /api/places/:pid
//	POST   /api/places
//	PATCH  /api/places/:pid
//	DELETE /api/places/:pid
type PlacesModule struct {
	Handler *handlers.PlaceHandler
	RDB     *redis.Client
}

func NewPlacesModule(h *handlers.PlaceHandler, rdb *redis.Client) *PlacesModule {
	return &PlacesModule{Handler: h, RDB: rdb}
}

func (m *PlacesModule) Register(rg *gin.RouterGroup) {
	readLimiter := middleware.RateLimit(m.RDB, 300, time.Minute, middleware.KeyByIPAndMethod(), nil)
	writeLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIPAndMethod(), nil)
	searchLimiter := middleware.RateLimit(m.RDB, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	places := rg.Group("/places")
	{
		places.GET("/search", searchLimiter, m.Handler.Search)
		places.GET("/user/:uid", readLimiter, m.Handler.GetPlacesByUser)
		places.GET("/:pid", readLimiter, m.Handler.GetPlace)

		places.POST("", writeLimiter, m.Handler.CreatePlace)
		places.PATCH("/:pid", writeLimiter, m.Handler.UpdatePlace)
		places.DELETE("/:pid", writeLimiter, m.Handler.DeletePlace)
	}
}
