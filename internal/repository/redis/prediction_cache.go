package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	goredis "github.com/redis/go-redis/v9"

	redisadapter "machina/internal/adapters/redis"
	"machina/internal/domain/efficiency"
	"machina/pkg/logger"
)

const keyPrefix = "prediction:"

// PredictionCache caches finished predictions keyed by the canonical form of
// the feature record. The pipeline is deterministic, so a cached entry is
// always identical to what a fresh pass would produce. Lookups and writes
// are best effort; a broken cache degrades to always-miss.
type PredictionCache struct {
	client *redisadapter.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewPredictionCache creates a new prediction cache
func NewPredictionCache(client *redisadapter.Client, ttl time.Duration) *PredictionCache {
	return &PredictionCache{
		client: client,
		ttl:    ttl,
		log:    logger.Get().With("component", "prediction_cache"),
	}
}

// GetPrediction retrieves a cached prediction by canonical feature key
func (c *PredictionCache) GetPrediction(ctx context.Context, key string) (*efficiency.Prediction, bool) {
	var prediction efficiency.Prediction
	err := c.client.Get(ctx, cacheKey(key), &prediction)
	if err == goredis.Nil {
		return nil, false
	}
	if err != nil {
		c.log.Warnf("Cache lookup failed: %v", err)
		return nil, false
	}
	return &prediction, true
}

// SetPrediction stores a prediction with the configured TTL
func (c *PredictionCache) SetPrediction(ctx context.Context, key string, prediction *efficiency.Prediction) {
	if err := c.client.Set(ctx, cacheKey(key), prediction, c.ttl); err != nil {
		c.log.Warnf("Cache write failed: %v", err)
	}
}

// cacheKey hashes the canonical record into a fixed-size redis key
func cacheKey(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return keyPrefix + hex.EncodeToString(sum[:])
}
