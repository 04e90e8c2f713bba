package classifier

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
)

var errMalformedDataURI = domain.NewClassificationError("malformed image data URI", nil)

func wrap(message string, err error) *domain.ClassificationError {
	return domain.NewClassificationError(fmt.Sprintf("%s: %v", message, err), err)
}

// AsClassificationError normalizes any adapter failure into a
// *ClassificationError with a readable message. A nil error stays nil.
func AsClassificationError(backend string, err error) error {
	if err == nil {
		return nil
	}
	var classErr *domain.ClassificationError
	if errors.As(err, &classErr) {
		return classErr
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return domain.NewClassificationError(fmt.Sprintf("%s classifier timed out", backend), err)
	case errors.Is(err, context.Canceled):
		return domain.NewClassificationError(fmt.Sprintf("%s classification canceled", backend), err)
	case errors.Is(err, httpx.ErrBreakerOpen):
		return domain.NewClassificationError(fmt.Sprintf("%s classifier unavailable: circuit breaker is open", backend), err)
	case errors.Is(err, domain.ErrEmptyResult):
		return domain.NewClassificationError(domain.ErrEmptyResult.Error(), err)
	}
	return domain.NewClassificationError(err.Error(), err)
}
