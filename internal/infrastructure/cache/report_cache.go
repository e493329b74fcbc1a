package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/retailops/backoffice/internal/application/report"
)

const reportVersionPrefix = "backoffice:report:version:"

// ReportCache stores report JSON under keys that embed a per-tenant version.
// Bumping the version orphans every earlier key; TTL reclaims them.
type ReportCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewReportCache creates the cache
func NewReportCache(client redis.UniversalClient, ttl time.Duration) *ReportCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ReportCache{client: client, ttl: ttl}
}

func versionKey(tenantID uuid.UUID) string {
	return reportVersionPrefix + tenantID.String()
}

// Version returns the tenant's current version, initialising it to 1
func (c *ReportCache) Version(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	ver, err := c.client.Get(ctx, versionKey(tenantID)).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, versionKey(tenantID), 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey(tenantID)).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes tenant, parts and the tenant's version
func (c *ReportCache) BuildKey(ctx context.Context, tenantID uuid.UUID, parts ...string) (string, error) {
	ver, err := c.Version(ctx, tenantID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("backoffice:%s:%s:v%d", tenantID, strings.Join(parts, ":"), ver), nil
}

// FetchJSON decodes the cached value into dest, or runs loader and stores its result
func (c *ReportCache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		return json.Unmarshal(payload, dest)
	}
	if !errors.Is(err, redis.Nil) {
		return err
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every cached report of the tenant
func (c *ReportCache) Bump(ctx context.Context, tenantID uuid.UUID) error {
	return c.client.Incr(ctx, versionKey(tenantID)).Err()
}

var _ report.Cache = (*ReportCache)(nil)
