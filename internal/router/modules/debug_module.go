package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-places-api/internal/interface/middleware"
)

// DebugModule exposes expvar counters (places created/deleted, aborted transactions).
type DebugModule struct {
	RDB *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{RDB: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// private networks are not limited
	rl := middleware.RateLimit(m.RDB, 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
