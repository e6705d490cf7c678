package mw

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func get(router *gin.Engine, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RateLimiter(rate.Limit(1), 2))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	assert.Equal(t, http.StatusOK, get(router, "/ping", nil).Code)
	assert.Equal(t, http.StatusOK, get(router, "/ping", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(router, "/ping", nil).Code,
		"the third request exceeds the burst")
}

func TestCache(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	var hits int
	router := gin.New()
	router.GET("/data", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, fmt.Sprintf("hit %d", hits))
	})

	first := get(router, "/data", nil)
	second := get(router, "/data", nil)
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, hits)
}

func TestCache_SkipsCallerIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	var hits int
	router := gin.New()
	router.GET("/data", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "ok")
	})

	get(router, "/data", map[string]string{"X-Employee-ID": "emp-1"})
	get(router, "/data", map[string]string{"X-Employee-ID": "emp-1"})
	get(router, "/data", map[string]string{"X-Admin-ID": "admin-1"})
	assert.Equal(t, 3, hits, "per-caller responses are never cached")
}

func TestCache_DoesNotStoreErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := cache.New(time.Minute, time.Minute)

	var hits int
	router := gin.New()
	router.GET("/broken", Cache(store, time.Minute), func(c *gin.Context) {
		hits++
		c.String(http.StatusInternalServerError, "boom")
	})

	get(router, "/broken", nil)
	get(router, "/broken", nil)
	assert.Equal(t, 2, hits)
}
