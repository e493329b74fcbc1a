package middleware

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appidentity "github.com/retailops/backoffice/internal/application/identity"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/auth"
	"github.com/retailops/backoffice/internal/infrastructure/config"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
	"github.com/retailops/backoffice/internal/testutil"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

type mockResolver struct {
	mock.Mock
}

func (m *mockResolver) Resolve(ctx context.Context, id appidentity.Identity) (identity.Principal, error) {
	args := m.Called(id)
	return args.Get(0).(identity.Principal), args.Error(1)
}

func signToken(t *testing.T, tenantID, userID uuid.UUID, role string, expiresIn time.Duration) string {
	t.Helper()
	token, err := auth.Sign(testSecret, &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "test-issuer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
		TenantID: tenantID.String(),
		UserID:   userID.String(),
		Username: "alice",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func authRouter(t *testing.T, resolver PrincipalResolver) *gin.Engine {
	t.Helper()
	verifier, err := auth.NewVerifier(config.JWTConfig{Secret: testSecret, Issuer: "test-issuer"})
	require.NoError(t, err)

	router := gin.New()
	router.Use(Authenticate(AuthConfig{
		Verifier:  verifier,
		Resolver:  resolver,
		SkipPaths: []string{"/health"},
	}))
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/me", func(c *gin.Context) {
		p, ok := GetPrincipal(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"role": p.Role, "tenant_id": p.TenantID}))
	})
	router.PUT("/members", RequireAction(identity.ActionMemberManage), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestAuthenticate(t *testing.T) {
	tenantID, userID := uuid.New(), uuid.New()

	t.Run("stored membership role wins over token role", func(t *testing.T) {
		resolver := new(mockResolver)
		resolver.On("Resolve", appidentity.Identity{
			TenantID: tenantID, UserID: userID, Username: "alice", Role: identity.RoleOwner,
		}).Return(identity.Principal{TenantID: tenantID, UserID: userID, Username: "alice", Role: identity.RoleStaff}, nil)

		token := signToken(t, tenantID, userID, "owner", time.Hour)
		w := testutil.Do(t, authRouter(t, resolver), http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})

		data := testutil.DecodeData[map[string]string](t, w)
		assert.Equal(t, "staff", data["role"])
		assert.Equal(t, tenantID.String(), data["tenant_id"])
		resolver.AssertExpectations(t)
	})

	t.Run("skip path needs no token", func(t *testing.T) {
		w := testutil.Do(t, authRouter(t, new(mockResolver)), http.MethodGet, "/health", nil, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", dto.ErrCodeUnauthorized},
		{"not bearer", "Basic abc", dto.ErrCodeUnauthorized},
		{"garbage token", "Bearer not-a-jwt", dto.ErrCodeUnauthorized},
		{"expired token", "Bearer " + signToken(t, tenantID, userID, "staff", -time.Hour), dto.ErrCodeTokenExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := new(mockResolver)
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			w := testutil.Do(t, authRouter(t, resolver), http.MethodGet, "/me", nil, headers)
			testutil.AssertErrorCode(t, w, http.StatusUnauthorized, tt.code)
			resolver.AssertNotCalled(t, "Resolve", mock.Anything)
		})
	}

	t.Run("caller without membership and without a valid role is denied", func(t *testing.T) {
		resolver := new(mockResolver)
		resolver.On("Resolve", mock.Anything).Return(identity.Principal{},
			shared.ErrPermissionDenied.WithDetail("reason", "no membership in tenant"))

		token := signToken(t, tenantID, userID, "", time.Hour)
		w := testutil.Do(t, authRouter(t, resolver), http.MethodGet, "/me", nil, map[string]string{"Authorization": "Bearer " + token})
		testutil.AssertErrorCode(t, w, http.StatusForbidden, dto.ErrCodePermissionDenied)
	})
}

func TestRequireAction(t *testing.T) {
	tenantID, userID := uuid.New(), uuid.New()

	for role, status := range map[identity.Role]int{
		identity.RoleOwner: http.StatusNoContent,
		identity.RoleAdmin: http.StatusForbidden,
		identity.RoleStaff: http.StatusForbidden,
	} {
		t.Run(string(role), func(t *testing.T) {
			resolver := new(mockResolver)
			resolver.On("Resolve", mock.Anything).Return(identity.Principal{TenantID: tenantID, UserID: userID, Role: role}, nil)

			token := signToken(t, tenantID, userID, string(role), time.Hour)
			w := testutil.Do(t, authRouter(t, resolver), http.MethodPut, "/members", nil, map[string]string{"Authorization": "Bearer " + token})
			assert.Equal(t, status, w.Code)
			if status == http.StatusForbidden {
				env := testutil.DecodeEnvelope(t, w)
				require.NotNil(t, env.Error)
				assert.Equal(t, string(identity.ActionMemberManage), env.Error.Details["action"])
			}
		})
	}
}
