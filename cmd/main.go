package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/container"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/geocoding"
	"github.com/oksasatya/go-places-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/go-places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-places-api/internal/infrastructure/search"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
	"github.com/oksasatya/go-places-api/internal/router"
	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStore(store)
	defer container.Close()

	// Redis is optional: rate limiting and the geocode cache are skipped without it
	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable, continuing without it")
		} else {
			container.SetRedis(rdb)
		}
	}

	container.SetGeocoder(geocoding.NewCachedGeocoder(newGeocoder(cfg, logger), container.GetRedis(), cfg.GeocodeCacheTTL, logger))

	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable, search disabled")
		} else if err := search.NewPlaceIndex(es, cfg.ESPlacesIndex).EnsureIndex(ctx); err != nil {
			logger.WithError(err).Warn("ensure places index failed, search disabled")
		} else {
			container.SetES(es)
		}
	}

	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQPlaceEventsQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable, place events disabled")
		} else {
			container.SetRabbitPub(pub)
		}
	}

	// Gin engine and global middleware
	r := gin.New()
	r.Use(middleware.ErrorHandler(logger))
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	corsCfg := cors.Config{
		AllowOrigins:     cfg.CORSOrigins(),
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "X-Requested-With", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))
	if cfg.HTTPLogEnabled {
		r.Use(gin.Logger())
	}

	reg := router.NewRegistry(r)
	// rate limit keys read the client IP set here
	reg.Use(middleware.RealIP())
	router.InitModules(reg, router.DepsFromContainer())
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.Infof("server starting on :%s (store=%s)", cfg.Port, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Errorf("server forced to shutdown: %v", err)
		return
	}
	logger.Info("server exited properly")
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, error) {
	switch cfg.StoreDriver {
	case "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return memory.NewStore().Bundle(), nil
	case "postgres":
		return pginfra.Open(ctx, cfg.PostgresDSN(), cfg.MigrationsDir, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife, logger)
	default:
		return repository.Store{}, errors.New("unknown STORE_DRIVER " + cfg.StoreDriver)
	}
}

func newGeocoder(cfg *config.Config, logger *logrus.Logger) application.Geocoder {
	if cfg.Geocoder == "google" {
		if cfg.GoogleAPIKey != "" {
			return geocoding.NewGoogleGeocoder(cfg.GoogleAPIKey, cfg.GeocoderTimeout)
		}
		logger.Warn("GEOCODER=google without GOOGLE_API_KEY, using static geocoder")
	}
	return geocoding.NewStaticGeocoder()
}
