package huggingface

import (
	"errors"
	"fmt"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/valyala/fastjson"
)

var errMalformedResponse = errors.New("malformed inference response")

// parseScores accepts the shapes the inference API returns:
// [[{label,score},...]] for text classification, [{label,score},...] for
// image classification and {"error": "..."} for model-side failures.
func parseScores(pool *fastjson.ParserPool, body []byte) (domain.LabelScores, error) {
	p := pool.Get()
	defer pool.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}

	if v.Type() == fastjson.TypeObject {
		if msg := v.GetStringBytes("error"); msg != nil {
			return nil, fmt.Errorf("inference api error: %s", msg)
		}
		return nil, fmt.Errorf("%w: unexpected object", errMalformedResponse)
	}

	items, err := v.Array()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformedResponse, err)
	}
	if len(items) > 0 && items[0].Type() == fastjson.TypeArray {
		items = items[0].GetArray()
	}
	if len(items) == 0 {
		return nil, domain.ErrEmptyResult
	}

	scores := make(domain.LabelScores, len(items))
	for _, item := range items {
		label := item.GetStringBytes("label")
		score := item.Get("score")
		if label == nil || score == nil || score.Type() != fastjson.TypeNumber {
			return nil, fmt.Errorf("%w: entry without label or score", errMalformedResponse)
		}
		scores[string(label)] = score.GetFloat64()
	}
	return scores, nil
}

func errorMessage(pool *fastjson.ParserPool, body []byte) string {
	p := pool.Get()
	defer pool.Put(p)

	v, err := p.ParseBytes(body)
	if err == nil {
		if msg := v.GetStringBytes("error"); msg != nil {
			return string(msg)
		}
	}
	if len(body) > maxErrorBodyLen {
		body = body[:maxErrorBodyLen]
	}
	return string(body)
}
