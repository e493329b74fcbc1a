package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime/pprof"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/testutil"
)

func TestProfiling_Labels(t *testing.T) {
	principal := testutil.Principal(testutil.TestTenantID(), identity.RoleStaff)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, principal)
		c.Next()
	})
	r.Use(Profiling(DefaultProfilingConfig()))

	labels := map[string]string{}
	r.POST("/api/v1/invoices/:id/payments", func(c *gin.Context) {
		for _, k := range []string{ProfilingLabelRoute, ProfilingLabelMethod, ProfilingLabelController, ProfilingLabelTenantID} {
			if v, ok := pprof.Label(c.Request.Context(), k); ok {
				labels[k] = v
			}
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/invoices/abc/payments", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, map[string]string{
		ProfilingLabelRoute:      "/api/v1/invoices/:id/payments",
		ProfilingLabelMethod:     http.MethodPost,
		ProfilingLabelController: "invoices",
		ProfilingLabelTenantID:   principal.TenantID.String(),
	}, labels)
}

func TestProfiling_SkipAndDisabled(t *testing.T) {
	for name, cfg := range map[string]ProfilingConfig{
		"skip path": DefaultProfilingConfig(),
		"disabled":  {Enabled: false},
	} {
		t.Run(name, func(t *testing.T) {
			r := gin.New()
			r.Use(Profiling(cfg))
			labelled := true
			r.GET("/health", func(c *gin.Context) {
				_, labelled = pprof.Label(c.Request.Context(), ProfilingLabelRoute)
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
			assert.Equal(t, http.StatusOK, w.Code)
			assert.False(t, labelled)
		})
	}
}

func TestControllerFromRoute(t *testing.T) {
	tests := map[string]string{
		"/api/v1/invoices":                "invoices",
		"/api/v1/inventory/:id/movements": "inventory",
		"/api/v2/reports/profit-loss":     "reports",
		"/health":                         "health",
		"":                                "",
	}
	for route, want := range tests {
		assert.Equal(t, want, controllerFromRoute(route), route)
	}
}

func TestIsVersionSegment(t *testing.T) {
	assert.True(t, isVersionSegment("v1"))
	assert.True(t, isVersionSegment("V12"))
	assert.False(t, isVersionSegment("v"))
	assert.False(t, isVersionSegment("vx"))
	assert.False(t, isVersionSegment("invoices"))
}
