package huggingface

import (
	"strings"

	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
)

// Option configures a Classifier.
type Option func(*Classifier)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client httpx.Client) Option {
	return func(c *Classifier) {
		if client != nil {
			c.client = client
		}
	}
}

func WithCircuitBreaker(breaker httpx.CircuitBreaker) Option {
	return func(c *Classifier) {
		if breaker != nil {
			c.breaker = breaker
		}
	}
}

func WithBaseURL(baseURL string) Option {
	return func(c *Classifier) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithAPIKey(apiKey string) Option {
	return func(c *Classifier) {
		c.apiKey = strings.TrimSpace(apiKey)
	}
}

// WithModels overrides the text and image model ids. Empty values keep the defaults.
func WithModels(textModel, imageModel string) Option {
	return func(c *Classifier) {
		if textModel != "" {
			c.textModel = textModel
		}
		if imageModel != "" {
			c.imageModel = imageModel
		}
	}
}
