package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/internal/infrastructure/geocoding"
	pginfra "github.com/oksasatya/go-places-api/internal/infrastructure/postgres"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// seed creates a demo user and one place for it. Running it again reuses the
// user and adds no second place.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)
	ctx := context.Background()

	store, err := pginfra.Open(ctx, cfg.PostgresDSN(), cfg.MigrationsDir, cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife, logger)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	users := application.NewUserService(store.Users, logger)
	places := application.NewPlaceService(store, geocoding.NewStaticGeocoder(), nil, nil, logger)

	const (
		email    = "demo@places.test"
		password = "password123"
	)
	u, err := store.Users.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		u, err = users.Signup(ctx, application.SignupInput{Name: "Demo User", Email: email, Password: password})
	}
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s password=%s\n", u.ID, u.Email, password)

	if len(u.Places) > 0 {
		fmt.Printf("user already owns %d place(s), nothing to do\n", len(u.Places))
		return
	}

	p, err := places.CreatePlace(ctx, application.CreatePlaceInput{
		Title:       "Empire State Building",
		Description: "One of the most famous sky scrapers in the world!",
		Address:     "20 W 34th St, New York, NY 10001",
		Creator:     u.ID,
	})
	if err != nil {
		log.Fatalf("failed to seed place: %v", err)
	}
	fmt.Printf("seeded place: id=%s title=%q lat=%f lng=%f\n", p.ID, p.Title, p.Location.Lat, p.Location.Lng)
}
