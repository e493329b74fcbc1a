// Package testutil provides common test utilities for the back office.
// It contains helpers for in-memory databases, principals, HTTP test
// contexts and eventually-consistent assertions.
package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/infrastructure/persistence"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// NewSQLiteDB opens an in-memory SQLite database private to t with every table migrated.
// The connection pool is limited to one connection, so callers must not hold a
// transaction open while issuing queries outside of it.
func NewSQLiteDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := unsafeNameChars.ReplaceAllString(t.Name(), "_")
	db, err := persistence.NewSQLiteDatabase("file:" + name + "?mode=memory&cache=shared")
	require.NoError(t, err, "Failed to open SQLite database")
	t.Cleanup(func() { _ = db.Close() })
	return db.DB
}

// Principal builds a principal with the given role in tenantID
func Principal(tenantID uuid.UUID, role identity.Role) identity.Principal {
	return identity.Principal{
		TenantID: tenantID,
		UserID:   NewTestUUID(string(role) + tenantID.String()),
		Username: string(role),
		Role:     role,
	}
}

// Owner returns an owner principal of the standard test tenant
func Owner() identity.Principal {
	return Principal(TestTenantID(), identity.RoleOwner)
}

// Admin returns an admin principal of the standard test tenant
func Admin() identity.Principal {
	return Principal(TestTenantID(), identity.RoleAdmin)
}

// Staff returns a staff principal of the standard test tenant
func Staff() identity.Principal {
	return Principal(TestTenantID(), identity.RoleStaff)
}

// TestContext wraps a Gin test context with HTTP recorder.
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
	Engine   *gin.Engine
}

// NewTestContext creates a new Gin test context.
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	return &TestContext{
		Context:  c,
		Recorder: w,
		Engine:   engine,
	}
}

// SetHeader sets a request header
func (tc *TestContext) SetHeader(key, value string) {
	tc.Context.Request.Header.Set(key, value)
}

// ResponseBody returns the response body bytes
func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// ResponseCode returns the response status code
func (tc *TestContext) ResponseCode() int {
	return tc.Recorder.Code
}

// NewTestUUID generates a deterministic UUID for testing.
// Uses the provided seed string to create a reproducible UUID.
func NewTestUUID(seed string) uuid.UUID {
	namespace := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	return uuid.NewSHA1(namespace, []byte(seed))
}

// TestTenantID returns a standard tenant ID for tests.
func TestTenantID() uuid.UUID {
	return NewTestUUID("test-tenant")
}

// ContextWithTimeout creates a context with a timeout for tests.
func ContextWithTimeout(t *testing.T, timeout time.Duration) (context.Context, context.CancelFunc) {
	t.Helper()
	return context.WithTimeout(context.Background(), timeout)
}

// AssertEventually retries a condition until it holds or times out.
func AssertEventually(t *testing.T, condition func() bool, timeout, interval time.Duration, msgAndArgs ...interface{}) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(interval)
	}

	t.Fatalf("Condition not met within %v: %v", timeout, msgAndArgs)
}
