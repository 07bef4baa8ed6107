package container

import (
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/config"
	"github.com/oksasatya/go-places-api/internal/application"
	"github.com/oksasatya/go-places-api/internal/domain/repository"
	"github.com/oksasatya/go-places-api/pkg/helpers"
)

// process-wide handles, set once at startup and closed on shutdown.
// Router wires modules from these.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	store       repository.Store
	redisClient *redis.Client
	geocoder    application.Geocoder

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)         { cfg = c }
func GetConfig() *config.Config          { return cfg }
func SetLogger(l *logrus.Logger)         { logger = l }
func GetLogger() *logrus.Logger          { return logger }
func SetStore(s repository.Store)        { store = s }
func GetStore() repository.Store         { return store }
func SetRedis(r *redis.Client)           { redisClient = r }
func GetRedis() *redis.Client            { return redisClient }
func SetGeocoder(g application.Geocoder) { geocoder = g }
func GetGeocoder() application.Geocoder  { return geocoder }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }

// Close releases every handle that holds a connection.
func Close() {
	if rabbitPub != nil {
		rabbitPub.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	if store.Close != nil {
		store.Close()
	}
}
