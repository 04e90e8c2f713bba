package local

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
	"github.com/mitchellh/mapstructure"
	"github.com/valyala/fastjson"
)

const (
	DefaultServingURL = "http://localhost:8080"
	DefaultTextModel  = "toxic-bert"
	DefaultImageModel = "resnet-50"

	predictionsPath = "/predictions/"
)

var errUnexpectedOutput = errors.New("unexpected model output")

// ServingClient talks to a model-serving sidecar on the same host. The
// sidecar exposes POST /predictions/{model}; text models answer with label
// predictions and image models with raw logits.
type ServingClient struct {
	client     httpx.Client
	breaker    httpx.CircuitBreaker
	baseURL    string
	textModel  string
	imageModel string
	parsers    fastjson.ParserPool
}

type ServingConfig struct {
	BaseURL    string
	TextModel  string
	ImageModel string
}

func NewServingClient(client httpx.Client, breaker httpx.CircuitBreaker, cfg ServingConfig) *ServingClient {
	if client == nil {
		client = &http.Client{}
	}
	if breaker == nil {
		breaker = httpx.NoopCircuitBreaker{}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultServingURL
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	return &ServingClient{
		client:     client,
		breaker:    breaker,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
}

func (s *ServingClient) Predict(ctx context.Context, text string) ([]Prediction, error) {
	var a fastjson.Arena
	obj := a.NewObject()
	obj.Set("text", a.NewString(text))
	body := obj.MarshalTo(nil)

	var predictions []Prediction
	err := s.breaker.Execute(func() error {
		raw, err := s.call(ctx, s.textModel, "application/json", body)
		if err != nil {
			return err
		}
		predictions, err = decodePredictions(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return predictions, nil
}

func (s *ServingClient) Logits(ctx context.Context, img image.Image) ([]float64, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, domain.NewClassificationError(fmt.Sprintf("cannot encode image: %v", err), err)
	}

	var logits []float64
	err := s.breaker.Execute(func() error {
		raw, err := s.call(ctx, s.imageModel, "image/png", buf.Bytes())
		if err != nil {
			return err
		}
		logits, err = decodeLogits(raw)
		return err
	})
	if err != nil {
		return nil, err
	}
	return logits, nil
}

func (s *ServingClient) call(ctx context.Context, model, contentType string, body []byte) (interface{}, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+predictionsPath+model, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create prediction request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := s.client.Do(req)
	if err != nil {
		if cause := ctx.Err(); cause != nil {
			return nil, cause
		}
		return nil, fmt.Errorf("failed to call model server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: model %s: status %d", httpx.ErrFailedCall, model, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("prediction response read error: %w", err)
	}

	p := s.parsers.Get()
	defer s.parsers.Put(p)
	v, err := p.ParseBytes(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errUnexpectedOutput, err)
	}
	// Copied out so the parser can go back to the pool.
	return plainValue(v), nil
}

// plainValue converts a parsed document into maps, slices and scalars for
// mapstructure.
func plainValue(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeObject:
		out := make(map[string]interface{})
		v.GetObject().Visit(func(key []byte, item *fastjson.Value) {
			out[string(key)] = plainValue(item)
		})
		return out
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]interface{}, 0, len(items))
		for _, item := range items {
			out = append(out, plainValue(item))
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}

// decodePredictions accepts a list of predictions, a single prediction or an
// object wrapping them under "predictions".
func decodePredictions(raw interface{}) ([]Prediction, error) {
	if obj, ok := raw.(map[string]interface{}); ok {
		if inner, ok := obj["predictions"]; ok {
			raw = inner
		} else {
			raw = []interface{}{obj}
		}
	}
	if list, ok := raw.([]interface{}); ok && len(list) > 0 {
		if nested, ok := list[0].([]interface{}); ok {
			raw = nested
		}
	}

	var predictions []Prediction
	if err := weakDecode(raw, &predictions); err != nil {
		return nil, err
	}
	for _, p := range predictions {
		if p.Label == "" {
			return nil, fmt.Errorf("%w: prediction without label", errUnexpectedOutput)
		}
	}
	return predictions, nil
}

// decodeLogits accepts a bare list, a single-row batch or {"logits": [...]}.
func decodeLogits(raw interface{}) ([]float64, error) {
	if obj, ok := raw.(map[string]interface{}); ok {
		raw = obj["logits"]
	}
	if list, ok := raw.([]interface{}); ok && len(list) == 1 {
		if row, ok := list[0].([]interface{}); ok {
			raw = row
		}
	}
	var logits []float64
	if err := weakDecode(raw, &logits); err != nil {
		return nil, err
	}
	return logits, nil
}

func weakDecode(input interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("%w: %v", errUnexpectedOutput, err)
	}
	return nil
}
