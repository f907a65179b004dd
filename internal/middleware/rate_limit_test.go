package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipelab/backend/internal/cache"
	"github.com/recipelab/backend/internal/service"
)

func limiterRouter(t *testing.T, client *redis.Client, disabled bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(client, disabled))
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return r
}

func doPing(r *gin.Engine, ip string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = ip + ":12345"
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterHourlyQuota(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limiterRouter(t, client, false)

	for i := 0; i < HourlyLimit; i++ {
		w := doPing(r, "10.0.0.1")
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := doPing(r, "10.0.0.1")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "Rate limit exceeded")
}

func TestRateLimitIsPerIP(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limiterRouter(t, client, false)

	for i := 0; i < HourlyLimit; i++ {
		doPing(r, "10.0.0.1")
	}
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.1").Code)
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.2").Code)
}

func TestRateLimitWindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := limiterRouter(t, client, false)

	for i := 0; i < HourlyLimit; i++ {
		doPing(r, "10.0.0.3")
	}
	assert.Equal(t, http.StatusTooManyRequests, doPing(r, "10.0.0.3").Code)

	mr.FastForward(time.Hour + time.Second)
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.3").Code)
}

func TestRateLimitDisabledLocally(t *testing.T) {
	r := limiterRouter(t, nil, true)
	for i := 0; i < HourlyLimit+10; i++ {
		assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.4").Code)
	}
}

func TestRateLimitFailsOpenWhenRedisDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	mr.Close()

	r := limiterRouter(t, client, false)
	assert.Equal(t, http.StatusOK, doPing(r, "10.0.0.5").Code)
}

func TestRequireAuthRejectsMissingAndBadTokens(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService("test-secret", cache.NewTTL[service.Identity](cache.TokenTTL, cache.TokenCapacity))

	r := gin.New()
	r.GET("/me", RequireAuth(auth), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": c.GetString(ContextUID)})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.IssueToken("user-42", "Pat", time.Hour)
	require.NoError(t, err)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-42")
}

func TestOptionalAuthPassesThroughAnonymous(t *testing.T) {
	gin.SetMode(gin.TestMode)
	auth := service.NewAuthService("test-secret", cache.NewTTL[service.Identity](cache.TokenTTL, cache.TokenCapacity))

	r := gin.New()
	r.GET("/maybe", OptionalAuth(auth), func(c *gin.Context) {
		uid, _ := c.Get(ContextUID)
		c.JSON(http.StatusOK, gin.H{"uid": uid})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/maybe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
