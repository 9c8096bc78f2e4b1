package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"seatplan/internal/models"
)

// ResultCache 排座结果缓存：seatplan:run:{run_id}
type ResultCache struct {
	kv  KV
	ttl time.Duration
}

// NewResultCache ttl <= 0 表示不过期
func NewResultCache(kv KV, ttl time.Duration) *ResultCache {
	return &ResultCache{kv: kv, ttl: ttl}
}

func runKey(runID string) string {
	return fmt.Sprintf("seatplan:run:%s", runID)
}

// Put 写入缓存
func (c *ResultCache) Put(ctx context.Context, result *models.PlacementResult) error {
	if result == nil || result.RunID == "" {
		return fmt.Errorf("placement result with run id is required")
	}
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal placement result: %w", err)
	}
	if err := c.kv.Set(ctx, runKey(result.RunID), string(data), c.ttl); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Get 读取缓存；不存在返回 ErrMiss
func (c *ResultCache) Get(ctx context.Context, runID string) (*models.PlacementResult, error) {
	raw, err := c.kv.Get(ctx, runKey(runID))
	if err != nil {
		return nil, err
	}
	var result models.PlacementResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached run %s: %w", runID, err)
	}
	return &result, nil
}
