package moderation

import (
	"errors"
	"fmt"
	"math"
	"sort"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
)

// Engine turns a label-score map into a verdict under a fixed policy.
type Engine struct {
	policy domain.Policy
}

func NewEngine(policy domain.Policy) *Engine {
	return &Engine{policy: policy}
}

// Decide never returns an error: classifier failures become a non-flagging
// result with Error set (fail-open).
func (e *Engine) Decide(contentType domain.ContentType, scores domain.LabelScores, classifyErr error) domain.Result {
	if classifyErr != nil {
		return domain.FailedResult(failureMessage(classifyErr))
	}
	if len(scores) == 0 {
		return domain.FailedResult(domain.ErrEmptyResult.Error())
	}
	for label, score := range scores {
		if math.IsNaN(score) || score < 0 || score > 1 {
			return domain.FailedResult(fmt.Sprintf("invalid score %v for label %q", score, label))
		}
	}

	threshold := e.policy.Threshold(contentType)

	var confidence float64
	flagged := make([]scoredLabel, 0, len(scores))
	for label, score := range scores {
		if e.policy.IsBenign(label) {
			continue
		}
		if score > confidence {
			confidence = score
		}
		if score > threshold {
			flagged = append(flagged, scoredLabel{label: label, score: score})
		}
	}

	return domain.Result{
		IsInappropriate:   confidence > threshold,
		Confidence:        confidence,
		Scores:            scores.Clone(),
		FlaggedCategories: e.categories(flagged),
	}
}

type scoredLabel struct {
	label string
	score float64
}

// categories orders flagged labels by descending score so the dominant
// category comes first.
func (e *Engine) categories(flagged []scoredLabel) []string {
	sort.Slice(flagged, func(i, j int) bool {
		if flagged[i].score == flagged[j].score {
			return flagged[i].label < flagged[j].label
		}
		return flagged[i].score > flagged[j].score
	})
	out := make([]string, 0, len(flagged))
	seen := make(map[string]struct{}, len(flagged))
	for _, f := range flagged {
		name := e.policy.CategoryName(f.label)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func failureMessage(err error) string {
	var classErr *domain.ClassificationError
	if errors.As(err, &classErr) {
		return classErr.Error()
	}
	return err.Error()
}
