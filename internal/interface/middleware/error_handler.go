package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-places-api/pkg/apperror"
	"github.com/oksasatya/go-places-api/pkg/helpers"
	"github.com/oksasatya/go-places-api/pkg/response"
)

// ErrorHandler is the only place error responses are written. Handlers report
// failures with c.Error and return; after the chain finishes the last error is
// rendered as {message}. If a response has already been sent the error is
// only logged.
func ErrorHandler(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		code, msg := apperror.StatusOf(err)
		fields := logrus.Fields{
			"request_id": c.GetString("request_id"),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     code,
		}

		if c.Writer.Written() {
			helpers.LogError(logger, "error after response was sent", err, fields)
			return
		}
		if code >= http.StatusInternalServerError {
			helpers.LogError(logger, msg, err, fields)
		}
		response.Error(c, code, msg, apperror.DetailsOf(err))
	}
}

// Recovery turns a panic into a last-resort 500 rendered by ErrorHandler.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		_ = c.Error(fmt.Errorf("panic: %v", recovered))
		c.Abort()
	})
}

// NoRoute reports unmatched routes.
func NoRoute(c *gin.Context) {
	_ = c.Error(apperror.RouteNotFound())
}
