package moderation

// LabelScores maps a category label to a confidence score in [0,1].
type LabelScores map[string]float64

func (s LabelScores) Clone() LabelScores {
	out := make(LabelScores, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

const highSeverityConfidence = 0.9

// Result is the verdict returned for a single moderation request.
type Result struct {
	IsInappropriate   bool        `json:"is_inappropriate"`
	Confidence        float64     `json:"confidence"`
	Scores            LabelScores `json:"scores"`
	FlaggedCategories []string    `json:"flagged_categories"`
	Error             *string     `json:"error,omitempty"`
}

// FailedResult is the fail-open verdict for a classifier failure.
func FailedResult(message string) Result {
	return Result{
		IsInappropriate:   false,
		Confidence:        0,
		Scores:            LabelScores{},
		FlaggedCategories: []string{},
		Error:             &message,
	}
}

func (r Result) Failed() bool {
	return r.Error != nil
}

func (r Result) Severity() Severity {
	switch {
	case !r.IsInappropriate:
		return SeverityNone
	case r.Confidence > highSeverityConfidence:
		return SeverityHigh
	default:
		return SeverityMedium
	}
}
