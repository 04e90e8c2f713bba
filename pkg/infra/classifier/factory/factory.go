package factory

import (
	"fmt"
	"strings"

	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
)

type Locator interface {
	Get(backend string) (classifier.Classifier, error)
	Backends() []string
}

type locator struct {
	classifiers map[string]classifier.Classifier
	fallback    string
}

// NewLocator indexes classifiers by their Name. An empty backend passed to
// Get resolves to fallback.
func NewLocator(fallback string, classifiers ...classifier.Classifier) Locator {
	l := &locator{
		classifiers: make(map[string]classifier.Classifier, len(classifiers)),
		fallback:    strings.ToLower(strings.TrimSpace(fallback)),
	}
	for _, c := range classifiers {
		if c != nil {
			l.classifiers[c.Name()] = c
		}
	}
	return l
}

func (l *locator) Get(backend string) (classifier.Classifier, error) {
	name := strings.ToLower(strings.TrimSpace(backend))
	if name == "" {
		name = l.fallback
	}
	if c, ok := l.classifiers[name]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("unknown classifier backend: %s", backend)
}

func (l *locator) Backends() []string {
	out := make([]string, 0, len(l.classifiers))
	for _, name := range []string{classifier.BackendHuggingFace, classifier.BackendOpenAI, classifier.BackendLocal} {
		if _, ok := l.classifiers[name]; ok {
			out = append(out, name)
		}
	}
	return out
}
