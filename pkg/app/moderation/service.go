package moderation

import (
	"context"
	"strings"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/app/metrics"
	"github.com/NeuralTrust/ContentGuard/pkg/common"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/sirupsen/logrus"
)

const missingFieldsMessage = "Missing content type or content"

// Request is a moderation request before validation.
type Request struct {
	Type    string
	Content classifier.Content
}

// Observer receives every verdict; used to export prometheus metrics.
type Observer interface {
	ObserveModeration(contentType domain.ContentType, backend string, result domain.Result, elapsed time.Duration)
}

//go:generate mockery --name=Moderator --dir=. --output=./mocks --filename=moderator_mock.go --case=underscore --with-expecter
type Moderator interface {
	Moderate(ctx context.Context, req Request) (domain.Result, error)
	Metrics() domain.Snapshot
}

type service struct {
	logger     *logrus.Logger
	classifier classifier.Classifier
	engine     *Engine
	recorder   metrics.Recorder
	observers  []Observer
	timeout    time.Duration
}

type ServiceOption func(*service)

func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

func WithObserver(observer Observer) ServiceOption {
	return func(s *service) {
		if observer != nil {
			s.observers = append(s.observers, observer)
		}
	}
}

func NewService(
	logger *logrus.Logger,
	classifier classifier.Classifier,
	engine *Engine,
	recorder metrics.Recorder,
	opts ...ServiceOption,
) Moderator {
	s := &service{
		logger:     logger,
		classifier: classifier,
		engine:     engine,
		recorder:   recorder,
		timeout:    common.DefaultModerationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Moderate validates the request, classifies, decides and records. The only
// errors it returns are *ValidationError; classifier failures come back as a
// Result with Error set.
func (s *service) Moderate(ctx context.Context, req Request) (domain.Result, error) {
	if strings.TrimSpace(req.Type) == "" || req.Content.Empty() {
		return domain.Result{}, domain.NewValidationError(missingFieldsMessage)
	}
	contentType, err := domain.ParseContentType(req.Type)
	if err != nil {
		return domain.Result{}, err
	}

	classifyCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	scores, classifyErr := s.classifier.Classify(classifyCtx, contentType, req.Content)
	elapsed := time.Since(start)

	result := s.engine.Decide(contentType, scores, classifyErr)
	s.recorder.Record(contentType, result)
	for _, o := range s.observers {
		o.ObserveModeration(contentType, s.classifier.Name(), result, elapsed)
	}
	s.log(ctx, contentType, result, elapsed)

	return result, nil
}

func (s *service) Metrics() domain.Snapshot {
	return s.recorder.Snapshot()
}

func (s *service) log(ctx context.Context, contentType domain.ContentType, result domain.Result, elapsed time.Duration) {
	entry := s.logger.WithFields(logrus.Fields{
		"request_id":   common.RequestID(ctx),
		"content_type": contentType,
		"backend":      s.classifier.Name(),
		"duration_ms":  elapsed.Milliseconds(),
	})
	switch {
	case result.Failed():
		entry.WithField("error", *result.Error).Warn("classification failed, content allowed")
	case result.IsInappropriate:
		entry.WithFields(logrus.Fields{
			"severity":           result.Severity(),
			"confidence":         result.Confidence,
			"flagged_categories": result.FlaggedCategories,
		}).Info("content flagged")
	default:
		entry.WithField("confidence", result.Confidence).Debug("content allowed")
	}
}
