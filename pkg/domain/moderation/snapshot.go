package moderation

// Snapshot is a point-in-time copy of the aggregate moderation counters.
type Snapshot struct {
	TotalChecks       int64            `json:"total_checks"`
	FlaggedContent    int64            `json:"flagged_content"`
	TextChecks        int64            `json:"text_checks"`
	ImageChecks       int64            `json:"image_checks"`
	CategoryCounts    map[string]int64 `json:"category_counts"`
	FlaggedPercentage float64          `json:"flagged_percentage"`
}
