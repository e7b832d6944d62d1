package ai

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"brandguard-platform/internal/logger"

	"github.com/redis/go-redis/v9"
)

const embeddingCacheTTL = 24 * time.Hour

// CachedEmbedder wraps an Embedder with a Redis cache keyed by a hash of the
// model and text. Cache failures fall through to the underlying embedder;
// only the embedder's own errors surface.
type CachedEmbedder struct {
	inner Embedder
	rdb   *redis.Client
	model string
}

func NewCachedEmbedder(inner Embedder, rdb *redis.Client, model string) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, rdb: rdb, model: model}
}

func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)

	if raw, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var vec []float32
		if err := json.Unmarshal(raw, &vec); err == nil && len(vec) > 0 {
			return vec, nil
		}
	}

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(vec); err == nil {
		if err := c.rdb.Set(ctx, key, raw, embeddingCacheTTL).Err(); err != nil {
			logger.Debug("embedding cache write failed", "error", err)
		}
	}
	return vec, nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return "embedding:" + hex.EncodeToString(sum[:])
}
