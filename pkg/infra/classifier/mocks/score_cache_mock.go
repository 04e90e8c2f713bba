package mocks

import (
	"context"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/mock"
)

type MockScoreCache struct {
	mock.Mock
}

func (m *MockScoreCache) Get(ctx context.Context, key string) (domain.LabelScores, bool) {
	args := m.Called(ctx, key)
	scores, _ := args.Get(0).(domain.LabelScores) //nolint:errcheck
	return scores, args.Bool(1)
}

func (m *MockScoreCache) Set(ctx context.Context, key string, scores domain.LabelScores) {
	m.Called(ctx, key, scores)
}
