package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/identity"
	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
)

// RequireAction rejects callers whose role does not allow action.
// Services repeat the check; this one stops the request before any body is bound.
func RequireAction(action identity.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		if err := principal.Authorize(action); err != nil {
			logger.GetGinLogger(c).Debug("Permission denied",
				zap.String("action", string(action)),
				zap.String("role", string(principal.Role)),
			)
			de, _ := shared.AsDomainError(err)
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewDomainErrorResponse(de, c.GetString(logger.GinRequestIDKey)))
			return
		}
		c.Next()
	}
}
