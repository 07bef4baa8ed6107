package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/infrastructure/search"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// event_worker consumes place events and mirrors them into the search index.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-event-worker", cfg.Env)

	if !cfg.EventsEnabled {
		logger.Info("EVENTS_ENABLED=false; event worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQPlaceEventsQueue == "" {
		log.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	es, err := helpers.NewESClient(ctx, cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		log.Fatalf("elasticsearch: %v", err)
	}
	index := search.NewPlaceIndex(es, cfg.ESPlacesIndex)
	if err := index.EnsureIndex(ctx); err != nil {
		log.Fatalf("ensure index: %v", err)
	}

	sub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQPlaceEventsQueue)
	if err != nil {
		log.Fatalf("amqp: %v", err)
	}
	defer sub.Close()

	// prefetch for fair dispatch between workers
	msgs, err := sub.Consume(16)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	syncer := application.NewPlaceEventSync(index)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			c, cancel := context.WithTimeout(ctx, 10*time.Second)
			ev, err := syncer.Handle(c, msg.Body)
			cancel()

			fields := logrus.Fields{"type": ev.Type, "place_id": ev.PlaceID}
			switch {
			case errors.Is(err, application.ErrBadEvent):
				helpers.LogError(logger, "dropping bad place event", err, fields)
				_ = msg.Nack(false, false)
			case err != nil:
				helpers.LogError(logger, "place event failed, requeueing", err, fields)
				_ = msg.Nack(false, true)
			default:
				logger.WithFields(fields).Debug("place event applied")
				_ = msg.Ack(false)
			}
		}
	}()

	logger.Infof("event worker listening on queue=%s", cfg.RabbitMQPlaceEventsQueue)
	select {
	case <-ctx.Done():
	case <-done:
		logger.Warn("delivery channel closed")
	}
	logger.Info("shutting down...")
	sub.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}
