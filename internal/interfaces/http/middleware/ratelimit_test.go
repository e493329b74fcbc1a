package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/testutil"
)

func TestRateLimiter_Allow(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	ok, remaining := rl.Allow("a")
	assert.True(t, ok)
	assert.Equal(t, 1, remaining)
	ok, _ = rl.Allow("a")
	assert.True(t, ok)
	ok, _ = rl.Allow("a")
	assert.False(t, ok, "third request in the window is rejected")

	ok, _ = rl.Allow("b")
	assert.True(t, ok, "keys are independent")

	now = now.Add(time.Minute)
	ok, _ = rl.Allow("a")
	assert.True(t, ok, "window reset")

	now = now.Add(3 * time.Minute)
	rl.cleanup()
	assert.Empty(t, rl.clients)
}

func TestRateLimit_Middleware(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-User") != "" {
			c.Set(PrincipalKey, testutil.Principal(testutil.TestTenantID(), identity.RoleStaff))
		}
		c.Next()
	})
	router.Use(RateLimit(limiter))
	router.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := testutil.Do(t, router, http.MethodGet, "/test", nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	testutil.AssertErrorCode(t, testutil.Do(t, router, http.MethodGet, "/test", nil, nil),
		http.StatusTooManyRequests, dto.ErrCodeRateLimited)

	// An authenticated caller has its own budget
	w = testutil.Do(t, router, http.MethodGet, "/test", nil, map[string]string{"X-Test-User": "1"})
	assert.Equal(t, http.StatusOK, w.Code)
}
