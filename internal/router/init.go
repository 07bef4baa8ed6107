package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/container"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/search"
	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/router/modules"
)

// Deps is everything the HTTP modules need. Index, Events and Redis are optional.
type Deps struct {
	Store        repository.Store
	Geocoder     application.Geocoder
	Index        application.PlaceIndexer
	Events       application.EventPublisher
	Redis        *redis.Client
	Logger       *logrus.Logger
	RateLimit    bool
	DebugMetrics bool
}

// DepsFromContainer collects Deps from the process-wide container.
func DepsFromContainer() Deps {
	cfg := container.GetConfig()
	d := Deps{
		Store:    container.GetStore(),
		Geocoder: container.GetGeocoder(),
		Logger:   container.GetLogger(),
	}
	if cfg != nil {
		d.RateLimit = cfg.RateLimitEnabled
		d.DebugMetrics = cfg.DebugMetricsEnabled
		if es := container.GetES(); es != nil {
			d.Index = search.NewPlaceIndex(es, cfg.ESPlacesIndex)
		}
	}
	if d.RateLimit {
		d.Redis = container.GetRedis()
	}
	// a typed nil must not end up in the interface
	if pub := container.GetRabbitPub(); pub != nil {
		d.Events = pub
	}
	return d
}

// InitModules builds the services and handlers and adds their modules to r.
// Call once during startup.
func InitModules(r *Registry, d Deps) {
	placeSvc := application.NewPlaceService(d.Store, d.Geocoder, d.Index, d.Events, d.Logger)
	userSvc := application.NewUserService(d.Store.Users, d.Logger)

	r.Add(modules.NewPlacesModule(handlers.NewPlaceHandler(placeSvc), d.Redis))
	r.Add(modules.NewUsersModule(handlers.NewUserHandler(userSvc), d.Redis))
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
