package moderation

import (
	"errors"
)

var ErrEmptyResult = errors.New("Model returned no results") //nolint:staticcheck

// ClassificationError is any failure to obtain label scores from a classifier:
// transport, malformed response, undecodable image or empty result set.
type ClassificationError struct {
	Message string
	Err     error
}

func NewClassificationError(message string, err error) *ClassificationError {
	return &ClassificationError{Message: message, Err: err}
}

func (e *ClassificationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "classification failed"
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}

// ValidationError reports a malformed moderation request.
type ValidationError struct {
	Message string
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
