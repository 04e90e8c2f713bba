package local

import (
	"context"
	"image"
)

// Prediction is a single label emitted by a text classification model.
type Prediction struct {
	Label string  `mapstructure:"label"`
	Score float64 `mapstructure:"score"`
}

type TextModel interface {
	// Predict returns predictions ordered by descending score.
	Predict(ctx context.Context, text string) ([]Prediction, error)
}

type ImageModel interface {
	// Logits returns the raw, unnormalized class outputs for img.
	Logits(ctx context.Context, img image.Image) ([]float64, error)
}
