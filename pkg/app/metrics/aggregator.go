package metrics

import (
	"math"
	"sync"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
)

type Recorder interface {
	Record(contentType domain.ContentType, result domain.Result)
	Snapshot() domain.Snapshot
}

// Aggregator keeps running moderation counters for the process lifetime.
// Counters only grow; Record and Snapshot are serialized by one mutex so a
// snapshot never observes half of an update.
type Aggregator struct {
	mu             sync.RWMutex
	totalChecks    int64
	flaggedContent int64
	textChecks     int64
	imageChecks    int64
	categoryCounts map[string]int64
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		categoryCounts: make(map[string]int64),
	}
}

func (a *Aggregator) Record(contentType domain.ContentType, result domain.Result) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.totalChecks++
	if contentType == domain.ContentTypeText {
		a.textChecks++
	} else {
		a.imageChecks++
	}
	if result.IsInappropriate {
		a.flaggedContent++
	}
	for _, category := range result.FlaggedCategories {
		a.categoryCounts[category]++
	}
}

func (a *Aggregator) Snapshot() domain.Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	counts := make(map[string]int64, len(a.categoryCounts))
	for k, v := range a.categoryCounts {
		counts[k] = v
	}

	return domain.Snapshot{
		TotalChecks:       a.totalChecks,
		FlaggedContent:    a.flaggedContent,
		TextChecks:        a.textChecks,
		ImageChecks:       a.imageChecks,
		CategoryCounts:    counts,
		FlaggedPercentage: flaggedPercentage(a.flaggedContent, a.totalChecks),
	}
}

func flaggedPercentage(flagged, total int64) float64 {
	if total == 0 {
		return 0
	}
	pct := float64(flagged) / float64(total) * 100
	return math.Round(pct*100) / 100
}
