package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"tinylink/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newLimitedRouter(limitConfig *config.Limit) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimit(nil, limitConfig))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func get(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitDisabled(t *testing.T) {
	router := newLimitedRouter(&config.Limit{Enabled: false})

	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, get(router, "/ping").Code)
	}
}

func TestRateLimitInMemory(t *testing.T) {
	router := newLimitedRouter(&config.Limit{Enabled: true, Requests: 60, Burst: 1})

	assert.Equal(t, http.StatusOK, get(router, "/ping").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/ping").Code)
}

func TestRateLimitSkipPaths(t *testing.T) {
	router := newLimitedRouter(&config.Limit{
		Enabled:   true,
		Requests:  60,
		Burst:     1,
		SkipPaths: []string{"/healthz"},
	})

	// Exhaust the bucket, then confirm the skipped path still answers.
	get(router, "/ping")
	get(router, "/ping")
	assert.Equal(t, http.StatusOK, get(router, "/healthz").Code)
}
