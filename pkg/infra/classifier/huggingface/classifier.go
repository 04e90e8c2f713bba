package huggingface

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fastjson"
)

const (
	DefaultBaseURL    = "https://api-inference.huggingface.co"
	DefaultTextModel  = "unitary/toxic-bert"
	DefaultImageModel = "microsoft/resnet-50"

	modelPath = "/models/"

	maxErrorBodyLen = 512
)

// Classifier calls the hosted inference API. Text goes to a toxicity model as
// {"inputs": text}; images go to an image-classification model as raw bytes.
type Classifier struct {
	client     httpx.Client
	breaker    httpx.CircuitBreaker
	logger     *logrus.Logger
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
	parsers    fastjson.ParserPool
}

func New(logger *logrus.Logger, opts ...Option) *Classifier {
	c := &Classifier{
		client:     &http.Client{},
		breaker:    httpx.NoopCircuitBreaker{},
		logger:     logger,
		baseURL:    DefaultBaseURL,
		textModel:  DefaultTextModel,
		imageModel: DefaultImageModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Classifier) Name() string {
	return classifier.BackendHuggingFace
}

func (c *Classifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content classifier.Content,
) (domain.LabelScores, error) {
	var (
		model       string
		body        []byte
		contentKind string
	)
	switch contentType {
	case domain.ContentTypeText:
		model, contentKind = c.textModel, "application/json"
		body = textPayload(content.Text())
	case domain.ContentTypeImage:
		data, err := content.ImageBytes()
		if err != nil {
			return nil, err
		}
		model, contentKind, body = c.imageModel, "application/octet-stream", data
	default:
		return nil, domain.NewClassificationError(fmt.Sprintf("unsupported content type %q", contentType), nil)
	}

	var scores domain.LabelScores
	err := c.breaker.Execute(func() error {
		var err error
		scores, err = c.execute(ctx, model, contentKind, body)
		return err
	})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			c.logger.WithError(err).WithField("model", model).Warn("huggingface inference failed")
		}
		return nil, classifier.AsClassificationError(c.Name(), err)
	}
	return scores, nil
}

func (c *Classifier) execute(ctx context.Context, model, contentKind string, body []byte) (domain.LabelScores, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+modelPath+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Content-Type", contentKind)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		return nil, fmt.Errorf("failed to call inference api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("inference response read error: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg := errorMessage(&c.parsers, raw); msg != "" {
			return nil, fmt.Errorf("%w: status %d: %s", httpx.ErrFailedCall, resp.StatusCode, msg)
		}
		return nil, fmt.Errorf("%w: status %d", httpx.ErrFailedCall, resp.StatusCode)
	}

	return parseScores(&c.parsers, raw)
}

func textPayload(text string) []byte {
	var a fastjson.Arena
	obj := a.NewObject()
	obj.Set("inputs", a.NewString(text))
	return obj.MarshalTo(nil)
}
