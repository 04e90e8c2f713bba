package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/sirupsen/logrus"
)

const (
	DefaultModel       = string(openai.ModerationModelOmniModerationLatest)
	httpClientTimeout  = 30 * time.Second
	dataURIImagePrefix = "data:image"
)

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Classifier uses the moderation endpoint. Its category scores map directly
// onto labels ("harassment", "violence", "self-harm/intent", ...).
type Classifier struct {
	client  openai.Client
	model   string
	breaker httpx.CircuitBreaker
	logger  *logrus.Logger
}

type Option func(*options)

type options struct {
	httpClient *http.Client
	breaker    httpx.CircuitBreaker
}

func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		if client != nil {
			o.httpClient = client
		}
	}
}

func WithCircuitBreaker(breaker httpx.CircuitBreaker) Option {
	return func(o *options) {
		if breaker != nil {
			o.breaker = breaker
		}
	}
}

func New(cfg Config, logger *logrus.Logger, opts ...Option) *Classifier {
	o := &options{
		httpClient: &http.Client{Timeout: httpClientTimeout},
		breaker:    httpx.NoopCircuitBreaker{},
	}
	for _, opt := range opts {
		opt(o)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(o.httpClient),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	return &Classifier{
		client:  openai.NewClient(reqOpts...),
		model:   model,
		breaker: o.breaker,
		logger:  logger,
	}
}

func (c *Classifier) Name() string {
	return classifier.BackendOpenAI
}

func (c *Classifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content classifier.Content,
) (domain.LabelScores, error) {
	input, err := moderationInput(contentType, content)
	if err != nil {
		return nil, err
	}

	var scores domain.LabelScores
	err = c.breaker.Execute(func() error {
		var err error
		scores, err = c.moderate(ctx, input)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("model", c.model).Warn("openai moderation failed")
		}
		return nil, classifier.AsClassificationError(c.Name(), err)
	}
	return scores, nil
}

func (c *Classifier) moderate(ctx context.Context, input openai.ModerationNewParamsInputUnion) (domain.LabelScores, error) {
	resp, err := c.client.Moderations.New(ctx, openai.ModerationNewParams{
		Input: input,
		Model: openai.ModerationModel(c.model),
	})
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, fmt.Errorf("%w: status %d", httpx.ErrFailedCall, apiErr.StatusCode)
		}
		return nil, fmt.Errorf("failed to call moderation api: %w", err)
	}
	if len(resp.Results) == 0 {
		return nil, domain.ErrEmptyResult
	}

	var scores domain.LabelScores
	if err := json.Unmarshal([]byte(resp.Results[0].CategoryScores.RawJSON()), &scores); err != nil {
		return nil, fmt.Errorf("invalid category scores: %w", err)
	}
	if len(scores) == 0 {
		return nil, domain.ErrEmptyResult
	}
	return scores, nil
}

func moderationInput(contentType domain.ContentType, content classifier.Content) (openai.ModerationNewParamsInputUnion, error) {
	switch contentType {
	case domain.ContentTypeText:
		return openai.ModerationNewParamsInputUnion{OfString: openai.String(content.Text())}, nil
	case domain.ContentTypeImage:
		uri, err := imageDataURI(content)
		if err != nil {
			return openai.ModerationNewParamsInputUnion{}, err
		}
		return openai.ModerationNewParamsInputUnion{
			OfModerationMultiModalArray: []openai.ModerationMultiModalInputUnionParam{{
				OfImageURL: &openai.ModerationImageURLInputParam{
					ImageURL: openai.ModerationImageURLInputImageURLParam{URL: uri},
				},
			}},
		}, nil
	}
	return openai.ModerationNewParamsInputUnion{}, domain.NewClassificationError(fmt.Sprintf("unsupported content type %q", contentType), nil)
}

// imageDataURI validates the payload and returns it as a data URI, the only
// inline form the moderation endpoint accepts.
func imageDataURI(content classifier.Content) (string, error) {
	data, err := content.ImageBytes()
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(content.Value, dataURIImagePrefix) {
		return content.Value, nil
	}
	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", domain.NewClassificationError(fmt.Sprintf("cannot decode image: unsupported format %s", mime), nil)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
