package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/probook/probook-api/internal/handler"
)

// ErrorHandler maps errors attached to the gin context onto HTTP responses.
// Application errors carry their own code; anything else is a 500.
func ErrorHandler(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(ContextRequestID)
		for _, e := range c.Errors {
			logger.Error().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		status, message := handler.StatusForError(c.Errors.Last().Err)
		c.JSON(status, handler.NewErrorResponse(message))
	}
}
