package cache

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"rental-pricing-ai/llm"
)

// AnalysisCache provides caching functionality for LLM pricing analysis
// results
type AnalysisCache struct {
	redis *RedisClient
}

// NewAnalysisCache creates a new analysis cache instance
func NewAnalysisCache(redis *RedisClient) *AnalysisCache {
	return &AnalysisCache{
		redis: redis,
	}
}

// GetSuggestion retrieves a cached pricing suggestion for a listing's night.
// Returns the cached suggestion and true if found, nil and false otherwise.
func (c *AnalysisCache) GetSuggestion(ctx context.Context, listingID, date, dataHash string) (*llm.Suggestion, bool) {
	if c.redis == nil {
		return nil, false
	}

	cacheKey := fmt.Sprintf("pricing:analysis:%s:%s:%s", listingID, date, dataHash)
	var suggestion llm.Suggestion

	if err := c.redis.Get(ctx, cacheKey, &suggestion); err != nil {
		return nil, false
	}

	return &suggestion, true
}

// SetSuggestion caches a pricing suggestion for a listing's night
func (c *AnalysisCache) SetSuggestion(ctx context.Context, listingID, date, dataHash string, suggestion *llm.Suggestion, ttl time.Duration) error {
	if c.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	cacheKey := fmt.Sprintf("pricing:analysis:%s:%s:%s", listingID, date, dataHash)
	return c.redis.Set(ctx, cacheKey, suggestion, ttl)
}

// GenerateDataHash creates a hash from a night's input data so stale
// cached suggestions are bypassed when the market picture changes
func GenerateDataHash(data interface{}) string {
	jsonData, _ := json.Marshal(data)
	hash := md5.Sum(jsonData)
	return fmt.Sprintf("%x", hash[:8]) // Use first 8 bytes for shorter hash
}
