package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/retailops/backoffice/internal/domain/shared"
	"github.com/retailops/backoffice/internal/infrastructure/logger"
	"github.com/retailops/backoffice/internal/interfaces/http/dto"
)

// IdempotencyKeyHeader names the client supplied retry key
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// Idempotency rejects a replayed request carrying an Idempotency-Key that was
// already accepted for the same caller and route. A request that fails releases
// its key so the client can retry. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" || store == nil {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.Set(ErrorCodeKey, dto.ErrCodeValidation)
			c.AbortWithStatusJSON(http.StatusBadRequest,
				dto.NewValidationErrorResponse("Idempotency-Key is too long", c.GetString(logger.GinRequestIDKey), nil))
			return
		}

		scope := "anonymous"
		if p, ok := GetPrincipal(c); ok {
			scope = p.TenantID.String() + ":" + p.UserID.String()
		}
		storeKey := scope + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key

		ctx := c.Request.Context()
		log := logger.GetGinLogger(c)
		fresh, err := store.MarkProcessed(ctx, storeKey, ttl)
		if err != nil {
			// Fail open
			log.Warn("Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !fresh {
			c.Set(ErrorCodeKey, dto.ErrCodeDuplicateRequest)
			resp := dto.NewErrorResponse(dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed")
			resp.Error.Details = map[string]any{"idempotency_key": key}
			c.AbortWithStatusJSON(http.StatusConflict, resp)
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Release(ctx, storeKey); err != nil {
				log.Warn("Failed to release idempotency key", zap.Error(err))
			}
		}
	}
}
