package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/retailops/backoffice/internal/testutil"
)

func TestHealthHandler(t *testing.T) {
	t.Run("all checks up", func(t *testing.T) {
		h := NewHealthHandler("Retail Back Office API", "1.2.3")
		h.AddCheck("database", func(context.Context) error { return nil })

		router := gin.New()
		router.GET("/health", h.Health)

		w := testutil.Do(t, router, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		data := testutil.DecodeData[HealthResponse](t, w)
		assert.Equal(t, "ok", data.Status)
		assert.Equal(t, "1.2.3", data.Version)
		assert.Equal(t, "up", data.Checks["database"])
		assert.NotEmpty(t, data.GoVersion)
	})

	t.Run("failing check degrades", func(t *testing.T) {
		h := NewHealthHandler("Retail Back Office API", "1.2.3")
		h.AddCheck("database", func(context.Context) error { return nil })
		h.AddCheck("redis", func(context.Context) error { return errors.New("connection refused") })

		router := gin.New()
		router.GET("/health", h.Health)

		w := testutil.Do(t, router, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		data := testutil.DecodeData[HealthResponse](t, w)
		assert.Equal(t, "degraded", data.Status)
		assert.Equal(t, "down", data.Checks["redis"])
		assert.Equal(t, "up", data.Checks["database"])
	})

	t.Run("no checks", func(t *testing.T) {
		router := gin.New()
		router.GET("/health", NewHealthHandler("api", "dev").Health)

		w := testutil.Do(t, router, http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, testutil.DecodeData[HealthResponse](t, w).Checks)
	})
}
