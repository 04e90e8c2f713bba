package classifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/common"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"golang.org/x/sync/singleflight"
)

//go:generate mockery --name=ScoreCache --dir=. --output=./mocks --filename=score_cache_mock.go --case=underscore --with-expecter
type ScoreCache interface {
	Get(ctx context.Context, key string) (domain.LabelScores, bool)
	Set(ctx context.Context, key string, scores domain.LabelScores)
}

type cachedClassifier struct {
	next    Classifier
	cache   ScoreCache
	group   singleflight.Group
	timeout time.Duration
}

type CachedOption func(*cachedClassifier)

// WithCallTimeout bounds the shared backend call, which outlives the
// deadline of whichever caller started it.
func WithCallTimeout(d time.Duration) CachedOption {
	return func(c *cachedClassifier) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewCachedClassifier serves repeated content from cache and collapses
// concurrent identical calls. Only successful, non-empty results are stored.
func NewCachedClassifier(next Classifier, cache ScoreCache, opts ...CachedOption) Classifier {
	c := &cachedClassifier{
		next:    next,
		cache:   cache,
		timeout: common.DefaultModerationTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *cachedClassifier) Name() string {
	return c.next.Name()
}

func (c *cachedClassifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content Content,
) (domain.LabelScores, error) {
	key := CacheKey(c.next.Name(), contentType, content)
	if scores, ok := c.cache.Get(ctx, key); ok {
		return scores, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		scores, err := c.next.Classify(callCtx, contentType, content)
		if err != nil {
			return nil, err
		}
		if len(scores) > 0 {
			c.cache.Set(callCtx, key, scores)
		}
		return scores, nil
	})

	select {
	case <-ctx.Done():
		return nil, AsClassificationError(c.next.Name(), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		scores, _ := res.Val.(domain.LabelScores) //nolint:errcheck
		return scores.Clone(), nil
	}
}

func CacheKey(backend string, contentType domain.ContentType, content Content) string {
	h := sha256.New()
	h.Write([]byte(backend))
	h.Write([]byte{0})
	h.Write([]byte(contentType))
	h.Write([]byte{0})
	h.Write(content.Key())
	return hex.EncodeToString(h.Sum(nil))
}
