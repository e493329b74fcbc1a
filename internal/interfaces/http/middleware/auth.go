package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appidentity "github.com/retailops/backoffice/internal/application/identity"
	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/auth"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
)

// Context keys and headers used by the auth middleware
const (
	PrincipalKey  = "principal"
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates a bearer token
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// PrincipalResolver maps a verified identity onto a tenant membership
type PrincipalResolver interface {
	Resolve(ctx context.Context, id appidentity.Identity) (identity.Principal, error)
}

// AuthConfig holds configuration for the auth middleware
type AuthConfig struct {
	Verifier TokenVerifier
	Resolver PrincipalResolver
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// Authenticate verifies the bearer token, resolves the caller's membership and
// stores the resulting principal in the gin context.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortUnauthorized(c, log, auth.ErrInvalidToken, "Missing token")
			return
		}

		claims, err := cfg.Verifier.Verify(token)
		if err != nil {
			abortUnauthorized(c, log, err, "Token validation failed")
			return
		}
		tenantID, _ := claims.TenantUUID()
		userID, _ := claims.UserUUID()
		role, _ := identity.ParseRole(claims.Role)

		principal, err := cfg.Resolver.Resolve(c.Request.Context(), appidentity.Identity{
			TenantID: tenantID,
			UserID:   userID,
			Username: claims.Username,
			Email:    claims.Email,
			Role:     role,
		})
		if err != nil {
			if de, ok := shared.AsDomainError(err); ok {
				c.AbortWithStatusJSON(dto.GetHTTPStatus(de.Code), dto.NewDomainErrorResponse(de, c.GetString(logger.GinRequestIDKey)))
				return
			}
			log.Error("Failed to resolve membership", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponse(dto.ErrCodeInternal, "An unexpected error occurred"))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(PrincipalKey, principal)
		c.Request = c.Request.WithContext(logger.WithScope(c.Request.Context(), logger.Scope{
			TenantID: principal.TenantID.String(),
			UserID:   principal.UserID.String(),
		}))

		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	log.Warn("Authentication failed",
		zap.Error(err),
		zap.String("message", message),
		zap.String("path", c.Request.URL.Path),
	)

	code := dto.ErrCodeUnauthorized
	msg := "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code = dto.ErrCodeTokenExpired
		msg = "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		msg = "Token is not yet valid"
	case errors.Is(err, auth.ErrMissingTenantID), errors.Is(err, auth.ErrMissingUserID), errors.Is(err, auth.ErrInvalidClaims):
		msg = "Token claims are incomplete"
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(code, msg))
}

// GetPrincipal retrieves the authenticated principal from gin.Context
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	if v, ok := c.Get(PrincipalKey); ok {
		if p, ok := v.(identity.Principal); ok {
			return p, true
		}
	}
	return identity.Principal{}, false
}

// GetJWTClaims retrieves the verified token claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if v, ok := c.Get(JWTClaimsKey); ok {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}
