package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandlerMiddleware recovers panics and answers with a generic 500 page
// so no internals reach the client.
func ErrorHandlerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Ctx(c.Request.Context()).Error().
					Interface("panic", err).
					Str("path", c.Request.URL.Path).
					Msg("recovered from panic")
				if !c.Writer.Written() {
					c.HTML(http.StatusInternalServerError, "error.html", gin.H{
						"status":  http.StatusInternalServerError,
						"message": "Something went wrong. Please try again later.",
					})
				}
				c.Abort()
			}
		}()

		c.Next()
	}
}
