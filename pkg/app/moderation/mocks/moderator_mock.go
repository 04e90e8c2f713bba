package mocks

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/ContentGuard/pkg/app/moderation"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/mock"
)

type MockModerator struct {
	mock.Mock
}

func (m *MockModerator) Moderate(ctx context.Context, req moderation.Request) (domain.Result, error) {
	args := m.Called(ctx, req)
	result, ok := args.Get(0).(domain.Result)
	if !ok && args.Get(0) != nil {
		return domain.Result{}, fmt.Errorf("expected domain.Result, got %T", args.Get(0))
	}
	return result, args.Error(1)
}

func (m *MockModerator) Metrics() domain.Snapshot {
	args := m.Called()
	snapshot, _ := args.Get(0).(domain.Snapshot) //nolint:errcheck
	return snapshot
}
