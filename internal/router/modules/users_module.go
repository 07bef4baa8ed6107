package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-places-api/internal/interface/http"
	"github.com/oksasatya/go-places-api/internal/interface/middleware"
)

// UsersModule mounts GET /api/users, POST /api/users/signup and POST /api/users/login.
type UsersModule struct {
	Handler *handlers.UserHandler
	RDB     *redis.Client
}

func NewUsersModule(h *handlers.UserHandler, rdb *redis.Client) *UsersModule {
	return &UsersModule{Handler: h, RDB: rdb}
}

func (m *UsersModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP(), nil)        // 10 req/min per IP
	signupLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIPAndPath(), nil) // 5 req/min per IP
	listLimiter := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/users")
	{
		users.GET("", listLimiter, m.Handler.ListUsers)
		users.POST("/signup", signupLimiter, m.Handler.Signup)
		users.POST("/login", loginLimiter, m.Handler.Login)
	}
}
