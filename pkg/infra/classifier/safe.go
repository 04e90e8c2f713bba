package classifier

import (
	"context"
	"fmt"
	"runtime/debug"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/sirupsen/logrus"
)

type safeClassifier struct {
	next   Classifier
	logger *logrus.Logger
}

// NewSafeClassifier guarantees the adapter contract for next: panics become
// errors, every error is a *ClassificationError and success is never empty.
func NewSafeClassifier(next Classifier, logger *logrus.Logger) Classifier {
	return &safeClassifier{next: next, logger: logger}
}

func (s *safeClassifier) Name() string {
	return s.next.Name()
}

func (s *safeClassifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content Content,
) (scores domain.LabelScores, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithFields(logrus.Fields{
				"backend": s.next.Name(),
				"panic":   r,
				"stack":   string(debug.Stack()),
			}).Error("classifier panicked")
			scores = nil
			err = domain.NewClassificationError(fmt.Sprintf("%s classifier failed: %v", s.next.Name(), r), nil)
		}
	}()

	scores, err = s.next.Classify(ctx, contentType, content)
	if err != nil {
		return nil, AsClassificationError(s.next.Name(), err)
	}
	if len(scores) == 0 {
		return nil, AsClassificationError(s.next.Name(), domain.ErrEmptyResult)
	}
	return scores, nil
}
