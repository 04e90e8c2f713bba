package request

import (
	"strings"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
)

const missingFieldsMessage = "Missing content type or content"

type ModerateRequest struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

func (r *ModerateRequest) Validate() error {
	if strings.TrimSpace(r.Type) == "" || r.Content == "" {
		return domain.NewValidationError(missingFieldsMessage)
	}
	if _, err := domain.ParseContentType(r.Type); err != nil {
		return err
	}
	return nil
}
