package mocks

import (
	"context"
	"fmt"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/stretchr/testify/mock"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockClassifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content classifier.Content,
) (domain.LabelScores, error) {
	args := m.Called(ctx, contentType, content)
	scores, ok := args.Get(0).(domain.LabelScores)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected domain.LabelScores, got %T", args.Get(0))
	}
	return scores, args.Error(1)
}
