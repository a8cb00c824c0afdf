package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"txguard/internal/model"
)

var ErrCacheMiss = errors.New("audit report not found in cache")

// AuditCache remembers audit reports by idempotency key so a retried batch
// gets the first answer.
type AuditCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewAuditCache(rdb *redis.Client, ttl time.Duration) *AuditCache {
	return &AuditCache{redisClient: rdb, ttl: ttl}
}

func auditKey(idempotencyKey string) string {
	return fmt.Sprintf("audit:idem:%s", idempotencyKey)
}

func (c *AuditCache) Get(ctx context.Context, idempotencyKey string) (*model.AuditReport, error) {
	data, err := c.redisClient.Get(ctx, auditKey(idempotencyKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("read audit report: %w", err)
	}

	var report model.AuditReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode audit report: %w", err)
	}
	return &report, nil
}

// Put stores the report unless one is already cached for the key. It reports
// whether this call stored it.
func (c *AuditCache) Put(ctx context.Context, idempotencyKey string, report *model.AuditReport) (bool, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return false, fmt.Errorf("encode audit report: %w", err)
	}
	stored, err := c.redisClient.SetNX(ctx, auditKey(idempotencyKey), data, c.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("save audit report: %w", err)
	}
	return stored, nil
}
