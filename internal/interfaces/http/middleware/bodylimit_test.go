package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/testutil"
)

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newEngine := func(limit int64) *gin.Engine {
		engine := gin.New()
		engine.Use(BodyLimit(limit))
		engine.POST("/invoices", func(c *gin.Context) {
			body, err := io.ReadAll(c.Request.Body)
			if err != nil {
				c.String(http.StatusBadRequest, "unreadable body")
				return
			}
			c.String(http.StatusOK, "%d", len(body))
		})
		return engine
	}

	t.Run("small invoice passes", func(t *testing.T) {
		w := testutil.Do(t, newEngine(1024), http.MethodPost, "/invoices", map[string]any{"customer_name": "Walk-in"}, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("declared length over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(strings.Repeat("x", 200)))
		w := httptest.NewRecorder()
		newEngine(100).ServeHTTP(w, req)

		testutil.AssertErrorCode(t, w, http.StatusRequestEntityTooLarge, dto.ErrCodePayloadTooLarge)
	})

	t.Run("chunked body is cut at the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(strings.Repeat("x", 100)))
		req.ContentLength = -1
		w := httptest.NewRecorder()
		newEngine(50).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/invoices", strings.NewReader(strings.Repeat("x", 4096)))
		w := httptest.NewRecorder()
		newEngine(0).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "4096", w.Body.String())
	})
}
