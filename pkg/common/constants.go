package common

import "time"

const (
	RequestIDHeader = "X-Request-Id"

	DefaultModerationTimeout = 10 * time.Second
	ClassificationCacheTTL   = 10 * time.Minute

	ModerateRoute = "/api/moderate"
	MetricsRoute  = "/api/metrics"
)
