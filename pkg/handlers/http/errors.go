package http

const (
	ErrInvalidJsonPayload = "Invalid JSON payload" //nolint:stylecheck
	ErrInternalServer     = "Internal server error"
)
