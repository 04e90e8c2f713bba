package request

import (
	"testing"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/stretchr/testify/assert"
)

func TestModerateRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     ModerateRequest
		wantErr string
	}{
		{name: "text", req: ModerateRequest{Type: "text", Content: "hello"}},
		{name: "image", req: ModerateRequest{Type: "image", Content: "data:image/png;base64,AAAA"}},
		{name: "missing type", req: ModerateRequest{Content: "hello"}, wantErr: "Missing content type or content"},
		{name: "blank type", req: ModerateRequest{Type: "  ", Content: "hello"}, wantErr: "Missing content type or content"},
		{name: "missing content", req: ModerateRequest{Type: "text"}, wantErr: "Missing content type or content"},
		{name: "video", req: ModerateRequest{Type: "video", Content: "x"}, wantErr: `Invalid content type. Must be either "text" or "image"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			assert.True(t, domain.IsValidationError(err))
		})
	}
}
