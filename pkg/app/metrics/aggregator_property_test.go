package metrics

import (
	"sync"
	"testing"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"pgregory.net/rapid"
)

type recordEvent struct {
	contentType domain.ContentType
	result      domain.Result
}

func drawEvents(rt *rapid.T) []recordEvent {
	n := rapid.IntRange(0, 60).Draw(rt, "n")
	events := make([]recordEvent, n)
	categories := []string{"toxic", "insult", "threat", "inappropriate_content"}
	for i := range events {
		ct := domain.ContentTypeText
		if rapid.Bool().Draw(rt, "image") {
			ct = domain.ContentTypeImage
		}
		res := cleanResult()
		if rapid.Bool().Draw(rt, "flagged") {
			picked := rapid.SliceOfNDistinct(rapid.SampledFrom(categories), 1, len(categories), rapid.ID[string]).Draw(rt, "categories")
			res = flaggedResult(0.9, picked...)
		}
		events[i] = recordEvent{contentType: ct, result: res}
	}
	return events
}

func TestProperty_ConcurrentRecordCounters(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		events := drawEvents(rt)
		agg := NewAggregator()

		var wg sync.WaitGroup
		for _, ev := range events {
			wg.Add(1)
			go func(ev recordEvent) {
				defer wg.Done()
				agg.Record(ev.contentType, ev.result)
			}(ev)
		}
		wg.Wait()

		var flagged, text int64
		categories := map[string]int64{}
		for _, ev := range events {
			if ev.result.IsInappropriate {
				flagged++
			}
			if ev.contentType == domain.ContentTypeText {
				text++
			}
			for _, c := range ev.result.FlaggedCategories {
				categories[c]++
			}
		}

		snap := agg.Snapshot()
		if snap.TotalChecks != int64(len(events)) {
			rt.Fatalf("total_checks = %d, want %d", snap.TotalChecks, len(events))
		}
		if snap.TextChecks+snap.ImageChecks != snap.TotalChecks {
			rt.Fatalf("text+image = %d, total = %d", snap.TextChecks+snap.ImageChecks, snap.TotalChecks)
		}
		if snap.TextChecks != text {
			rt.Fatalf("text_checks = %d, want %d", snap.TextChecks, text)
		}
		if snap.FlaggedContent != flagged {
			rt.Fatalf("flagged_content = %d, want %d", snap.FlaggedContent, flagged)
		}
		for c, n := range categories {
			if snap.CategoryCounts[c] != n {
				rt.Fatalf("category %q = %d, want %d", c, snap.CategoryCounts[c], n)
			}
		}
		if len(events) == 0 && snap.FlaggedPercentage != 0 {
			rt.Fatalf("flagged_percentage = %v on empty aggregator", snap.FlaggedPercentage)
		}
	})
}
