package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger_Levels(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(RequestLogger(logrus.NewEntry(log)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	tests := []struct {
		path  string
		level logrus.Level
	}{
		{"/ok", logrus.DebugLevel},
		{"/bad", logrus.WarnLevel},
		{"/boom", logrus.ErrorLevel},
	}
	for _, tt := range tests {
		hook.Reset()
		serve(r, http.MethodGet, tt.path, nil)
		entry := hook.LastEntry()
		require.NotNil(t, entry, tt.path)
		assert.Equal(t, tt.level, entry.Level, tt.path)
		assert.Equal(t, tt.path, entry.Data["path"])
	}
}

func TestHoneybadgerMiddleware_DisabledPassesThrough(t *testing.T) {
	log, hook := test.NewNullLogger()

	r := gin.New()
	r.Use(HoneybadgerMiddleware(logrus.NewEntry(log), "", ""))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	w := serve(r, http.MethodGet, "/x", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, hook.LastEntry().Message, "not active")
}
