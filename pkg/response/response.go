package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the JSON shape of every error response.
type ErrorBody struct {
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// Success writes {key: data}.
func Success(ctx *gin.Context, status int, key string, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, gin.H{key: data})
}

// Message writes {"message": message}.
func Message(ctx *gin.Context, status int, message string) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, gin.H{"message": message})
}

// Error writes an ErrorBody and aborts the remaining handlers.
func Error(ctx *gin.Context, status int, message string, details map[string]string) {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	ctx.AbortWithStatusJSON(status, ErrorBody{
		Message:   message,
		Details:   details,
		RequestID: ctx.GetString("request_id"),
	})
}
