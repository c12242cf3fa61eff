package controller

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/bassista/go_flix/internal/tmdb"
	"github.com/containerd/errdefs"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// statusFor maps an error class to the HTTP status returned to the client.
func statusFor(err error) int {
	switch {
	case errdefs.IsInvalidArgument(err):
		return http.StatusBadRequest
	case errdefs.IsNotFound(err):
		return http.StatusNotFound
	case errdefs.IsResourceExhausted(err):
		return http.StatusTooManyRequests
	case errdefs.IsUnavailable(err):
		return http.StatusServiceUnavailable
	case errors.Is(err, errdefs.ErrUnauthenticated), errdefs.IsPermissionDenied(err), errdefs.IsUnknown(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, log *logrus.Entry, op string, err error) {
	status := statusFor(err)
	entry := log.WithField("status", status).WithError(err)
	if kind := tmdb.KindOf(err); kind != "" {
		entry = entry.WithField("kind", kind)
	}
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s failed", op)
	} else {
		entry.Debugf("%s rejected", op)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// intQuery parses an optional integer query parameter bounded to [lo, hi].
func intQuery(c *gin.Context, name string, def, lo, hi int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < lo || n > hi {
		badRequest(c, "invalid "+name+": must be an integer between "+strconv.Itoa(lo)+" and "+strconv.Itoa(hi))
		return 0, false
	}
	return n, true
}

// idParam parses the :id path parameter as a positive integer.
func idParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		badRequest(c, "invalid movie id")
		return 0, false
	}
	return id, true
}
