package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/common"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ScoreCache stores successful label-score maps in a local TTL map backed by
// redis. Without a redis client it is process-local only. Cache errors are
// logged and treated as misses.
type ScoreCache struct {
	local  *TTLMap[domain.LabelScores]
	remote Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewScoreCache(remote Client, ttl time.Duration, logger *logrus.Logger) *ScoreCache {
	if ttl <= 0 {
		ttl = common.ClassificationCacheTTL
	}
	return &ScoreCache{
		local:  NewTTLMap[domain.LabelScores](ttl),
		remote: remote,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *ScoreCache) Get(ctx context.Context, key string) (domain.LabelScores, bool) {
	if scores, ok := c.local.Get(key); ok {
		return scores.Clone(), true
	}
	if c.remote == nil {
		return nil, false
	}

	raw, err := c.remote.Get(ctx, fmt.Sprintf(ScoresKeyPattern, key))
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WithError(err).Warn("failed to read cached scores")
		}
		return nil, false
	}
	var scores domain.LabelScores
	if err := json.Unmarshal([]byte(raw), &scores); err != nil || len(scores) == 0 {
		c.logger.WithField("key", key).Warn("discarding malformed cached scores")
		return nil, false
	}
	c.local.Set(key, scores)
	return scores.Clone(), true
}

func (c *ScoreCache) Set(ctx context.Context, key string, scores domain.LabelScores) {
	if len(scores) == 0 {
		return
	}
	stored := scores.Clone()
	c.local.Set(key, stored)
	if c.remote == nil {
		return
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		c.logger.WithError(err).Warn("failed to encode scores for cache")
		return
	}
	if err := c.remote.Set(ctx, fmt.Sprintf(ScoresKeyPattern, key), string(payload), c.ttl); err != nil {
		c.logger.WithError(err).Warn("failed to write cached scores")
	}
}

// Purge drops expired local entries.
func (c *ScoreCache) Purge() int {
	return c.local.Purge()
}
