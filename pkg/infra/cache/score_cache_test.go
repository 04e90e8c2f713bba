package cache

import (
	"context"
	"errors"
	"io"
	"strconv"
	"testing"
	"time"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v8"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(Config{Host: mr.Host(), Port: port}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestNewClient_ConnectionFailure(t *testing.T) {
	_, err := NewClient(Config{Host: "127.0.0.1", Port: 1}, testLogger())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to redis")
}

func TestScoreCache_LocalOnly(t *testing.T) {
	ctx := context.Background()
	c := NewScoreCache(nil, time.Minute, testLogger())

	_, ok := c.Get(ctx, "abc")
	assert.False(t, ok)

	c.Set(ctx, "abc", domain.LabelScores{"toxic": 0.91})
	scores, ok := c.Get(ctx, "abc")

	require.True(t, ok)
	assert.Equal(t, domain.LabelScores{"toxic": 0.91}, scores)
}

func TestScoreCache_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	c := NewScoreCache(nil, time.Minute, testLogger())
	original := domain.LabelScores{"toxic": 0.5}

	c.Set(ctx, "k", original)
	original["toxic"] = 0.99
	first, _ := c.Get(ctx, "k")
	first["toxic"] = 0.1
	second, _ := c.Get(ctx, "k")

	assert.Equal(t, 0.5, second["toxic"])
}

func TestScoreCache_SkipsEmptyScores(t *testing.T) {
	ctx := context.Background()
	c := NewScoreCache(nil, time.Minute, testLogger())

	c.Set(ctx, "k", domain.LabelScores{})

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestScoreCache_Redis(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)

	writer := NewScoreCache(client, time.Minute, testLogger())
	writer.Set(ctx, "abc", domain.LabelScores{"toxic": 0.2, "non_toxic": 0.8})

	stored, err := mr.Get("moderation:scores:abc")
	require.NoError(t, err)
	assert.JSONEq(t, `{"toxic":0.2,"non_toxic":0.8}`, stored)
	assert.Equal(t, time.Minute, mr.TTL("moderation:scores:abc"))

	// a second instance only sees the shared entry
	reader := NewScoreCache(client, time.Minute, testLogger())
	scores, ok := reader.Get(ctx, "abc")
	require.True(t, ok)
	assert.Equal(t, domain.LabelScores{"toxic": 0.2, "non_toxic": 0.8}, scores)
}

func TestScoreCache_RedisMalformedEntry(t *testing.T) {
	ctx := context.Background()
	mr, client := setupMiniredis(t)
	require.NoError(t, mr.Set("moderation:scores:bad", "not-json"))

	c := NewScoreCache(client, time.Minute, testLogger())
	_, ok := c.Get(ctx, "bad")

	assert.False(t, ok)
}

func TestScoreCache_RedisErrorsAreMisses(t *testing.T) {
	ctx := context.Background()
	redisClient, mock := redismock.NewClientMock()
	mock.ExpectGet("moderation:scores:k").SetErr(errors.New("connection reset"))
	mock.ExpectSet("moderation:scores:k", `{"toxic":0.3}`, time.Minute).SetErr(errors.New("connection reset"))

	c := NewScoreCache(NewClientFromRedis(redisClient), time.Minute, testLogger())

	_, ok := c.Get(ctx, "k")
	assert.False(t, ok)

	c.Set(ctx, "k", domain.LabelScores{"toxic": 0.3})
	scores, ok := c.Get(ctx, "k")
	assert.True(t, ok)
	assert.Equal(t, 0.3, scores["toxic"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
