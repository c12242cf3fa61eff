package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bassista/go_flix/internal/logger"
	"github.com/gin-gonic/gin"
)

// RequestTimeout bounds how long a handler may wait on the catalog. Handlers see the
// deadline through the request context; cache fetches they started are detached and
// still fill the cache after the client got its 504.
func RequestTimeout(d time.Duration) gin.HandlerFunc {
	if d <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	log := logger.WithComponent("http")
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()

		if c.Writer.Written() || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return
		}
		log.WithField("path", c.Request.URL.Path).Warnf("no response within %v", d)
		c.AbortWithStatusJSON(http.StatusGatewayTimeout, gin.H{
			"error":   "movie data did not arrive in time, retry shortly",
			"timeout": d.String(),
		})
	}
}
