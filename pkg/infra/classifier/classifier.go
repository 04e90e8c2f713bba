package classifier

import (
	"context"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
)

const (
	BackendHuggingFace = "huggingface"
	BackendOpenAI      = "openai"
	BackendLocal       = "local"
)

// Classifier turns content into a non-empty label-score map. Implementations
// report every failure through the returned error and never panic.
//
//go:generate mockery --name=Classifier --dir=. --output=./mocks --filename=classifier_mock.go --case=underscore --with-expecter
type Classifier interface {
	Name() string
	Classify(ctx context.Context, contentType domain.ContentType, content Content) (domain.LabelScores, error)
}
