package prometheus

import (
	"time"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
)

const (
	OutcomeClean   = "clean"
	OutcomeFlagged = "flagged"
	OutcomeError   = "error"
)

// ModerationObserver exports each verdict to the package collectors.
type ModerationObserver struct{}

func NewModerationObserver() *ModerationObserver {
	return &ModerationObserver{}
}

func (ModerationObserver) ObserveModeration(
	contentType domain.ContentType,
	backend string,
	result domain.Result,
	elapsed time.Duration,
) {
	labels := []string{contentType.String(), backend}

	outcome := OutcomeClean
	switch {
	case result.Failed():
		outcome = OutcomeError
	case result.IsInappropriate:
		outcome = OutcomeFlagged
	}
	ModerationChecksTotal.WithLabelValues(append(labels, outcome)...).Inc()

	if result.IsInappropriate {
		ModerationFlagsTotal.WithLabelValues(append(labels, string(result.Severity()))...).Inc()
		if Config.EnableCategoryFlags {
			for _, category := range result.FlaggedCategories {
				CategoryFlagsTotal.WithLabelValues(category).Inc()
			}
		}
	}

	if Config.EnableLatency {
		ClassificationLatency.WithLabelValues(labels...).Observe(float64(elapsed.Milliseconds()))
	}
}
