package local

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"

	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/sirupsen/logrus"
)

const (
	DefaultTargetLabel     = "toxic"
	DefaultComplementLabel = "non_toxic"
	ImageLabel             = "inappropriate"
)

type Config struct {
	TargetLabel     string
	ComplementLabel string
}

// Classifier runs inference against locally hosted models.
//
// Text produces the two-entry view {target: p, complement: 1-p} where p is
// the target label's probability derived from the top prediction. Images
// are decoded, passed through the image model and reduced to a single
// {"inappropriate": max softmax probability} entry. That score is the top-1
// confidence of a generic classifier, not a trained moderation signal.
type Classifier struct {
	text   TextModel
	image  ImageModel
	cfg    Config
	logger *logrus.Logger
}

func New(text TextModel, image ImageModel, cfg Config, logger *logrus.Logger) *Classifier {
	if cfg.TargetLabel == "" {
		cfg.TargetLabel = DefaultTargetLabel
	}
	if cfg.ComplementLabel == "" {
		cfg.ComplementLabel = DefaultComplementLabel
	}
	return &Classifier{text: text, image: image, cfg: cfg, logger: logger}
}

func (c *Classifier) Name() string {
	return classifier.BackendLocal
}

func (c *Classifier) Classify(
	ctx context.Context,
	contentType domain.ContentType,
	content classifier.Content,
) (domain.LabelScores, error) {
	var (
		scores domain.LabelScores
		err    error
	)
	switch contentType {
	case domain.ContentTypeText:
		scores, err = c.classifyText(ctx, content.Text())
	case domain.ContentTypeImage:
		scores, err = c.classifyImage(ctx, content)
	default:
		return nil, domain.NewClassificationError(fmt.Sprintf("unsupported content type %q", contentType), nil)
	}
	if err != nil {
		c.logger.WithError(err).WithField("content_type", contentType).Warn("local inference failed")
		return nil, classifier.AsClassificationError(c.Name(), err)
	}
	return scores, nil
}

func (c *Classifier) classifyText(ctx context.Context, text string) (domain.LabelScores, error) {
	predictions, err := c.text.Predict(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(predictions) == 0 {
		return nil, domain.ErrEmptyResult
	}
	top := predictions[0]
	for _, p := range predictions[1:] {
		if p.Score > top.Score {
			top = p
		}
	}
	if invalidProbability(top.Score) {
		return nil, fmt.Errorf("text model returned invalid score %v", top.Score)
	}

	p := top.Score
	if top.Label != c.cfg.TargetLabel {
		p = 1 - top.Score
	}
	return domain.LabelScores{
		c.cfg.TargetLabel:     p,
		c.cfg.ComplementLabel: 1 - p,
	}, nil
}

func (c *Classifier) classifyImage(ctx context.Context, content classifier.Content) (domain.LabelScores, error) {
	data, err := content.ImageBytes()
	if err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, domain.NewClassificationError(fmt.Sprintf("cannot decode image: %v", err), err)
	}
	c.logger.WithFields(logrus.Fields{
		"format": format,
		"width":  img.Bounds().Dx(),
		"height": img.Bounds().Dy(),
	}).Debug("image decoded")

	logits, err := c.image.Logits(ctx, img)
	if err != nil {
		return nil, err
	}
	probs := Softmax(logits)
	if len(probs) == 0 {
		return nil, domain.ErrEmptyResult
	}
	best := probs[0]
	for _, p := range probs[1:] {
		best = math.Max(best, p)
	}
	return domain.LabelScores{ImageLabel: best}, nil
}

// Softmax normalizes logits into probabilities. It subtracts the max logit
// first so large inputs do not overflow.
func Softmax(logits []float64) []float64 {
	if len(logits) == 0 {
		return nil
	}
	peak := logits[0]
	for _, l := range logits[1:] {
		if l > peak {
			peak = l
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		out[i] = math.Exp(l - peak)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

func invalidProbability(p float64) bool {
	return math.IsNaN(p) || p < 0 || p > 1
}
