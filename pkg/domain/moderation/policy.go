package moderation

import "fmt"

const (
	DefaultTextThreshold  = 0.8
	DefaultImageThreshold = 0.7
)

// Policy holds the process-wide thresholds. It is built once at startup and
// never mutated afterwards.
type Policy struct {
	TextThreshold  float64
	ImageThreshold float64
	// BenignLabels stay in the reported scores but never drive confidence or
	// flagging.
	BenignLabels map[string]struct{}
	// CategoryAliases renames a label when it is reported as a flagged category.
	CategoryAliases map[string]string
}

func DefaultPolicy() Policy {
	return Policy{
		TextThreshold:  DefaultTextThreshold,
		ImageThreshold: DefaultImageThreshold,
	}
}

func NewPolicy(textThreshold, imageThreshold float64, benign []string, aliases map[string]string) (Policy, error) {
	p := Policy{
		TextThreshold:   textThreshold,
		ImageThreshold:  imageThreshold,
		BenignLabels:    make(map[string]struct{}, len(benign)),
		CategoryAliases: make(map[string]string, len(aliases)),
	}
	for _, l := range benign {
		p.BenignLabels[l] = struct{}{}
	}
	for k, v := range aliases {
		p.CategoryAliases[k] = v
	}
	if err := p.Validate(); err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (p Policy) Validate() error {
	if p.TextThreshold <= 0 || p.TextThreshold >= 1 {
		return fmt.Errorf("text threshold must be in (0,1), got %v", p.TextThreshold)
	}
	if p.ImageThreshold <= 0 || p.ImageThreshold >= 1 {
		return fmt.Errorf("image threshold must be in (0,1), got %v", p.ImageThreshold)
	}
	return nil
}

func (p Policy) Threshold(t ContentType) float64 {
	if t == ContentTypeText {
		return p.TextThreshold
	}
	return p.ImageThreshold
}

func (p Policy) IsBenign(label string) bool {
	_, ok := p.BenignLabels[label]
	return ok
}

func (p Policy) CategoryName(label string) string {
	if alias, ok := p.CategoryAliases[label]; ok && alias != "" {
		return alias
	}
	return label
}
