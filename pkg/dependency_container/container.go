package dependency_container

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/app/metrics"
	"github.com/NeuralTrust/ContentGuard/pkg/app/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/config"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	handlers "github.com/NeuralTrust/ContentGuard/pkg/handlers/http"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/cache"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier/factory"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier/huggingface"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier/local"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier/openai"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/httpx"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/prometheus"
	"github.com/NeuralTrust/ContentGuard/pkg/middleware"
	"github.com/NeuralTrust/ContentGuard/pkg/server/router"
	"github.com/NeuralTrust/ContentGuard/pkg/version"
	"github.com/sirupsen/logrus"
)

const cachePurgeInterval = time.Minute

type Container struct {
	Cache               cache.Client
	ScoreCache          *cache.ScoreCache
	ClassifierLocator   factory.Locator
	Classifier          classifier.Classifier
	Aggregator          *metrics.Aggregator
	Moderator           moderation.Moderator
	HandlerTransport    handlers.HandlerTransport
	MiddlewareTransport *middleware.Transport
	Routers             []router.ServerRouter
	logger              *logrus.Logger
}

type ContainerDI struct {
	Cfg    *config.Config
	Logger *logrus.Logger
	// Cache overrides the redis client built from Cfg.Redis; used by tests.
	Cache cache.Client
}

func NewContainer(di ContainerDI) (*Container, error) {
	cfg := di.Cfg

	policy, err := domain.NewPolicy(
		cfg.Moderation.TextThreshold,
		cfg.Moderation.ImageThreshold,
		cfg.Moderation.BenignLabels,
		cfg.Moderation.CategoryAliases,
	)
	if err != nil {
		return nil, fmt.Errorf("invalid moderation policy: %w", err)
	}

	locator := factory.NewLocator(
		cfg.Classifier.Backend,
		newHuggingFaceClassifier(cfg, di.Logger),
		newOpenAIClassifier(cfg, di.Logger),
		newLocalClassifier(cfg, di.Logger),
	)
	backend, err := locator.Get(cfg.Classifier.Backend)
	if err != nil {
		return nil, err
	}

	container := &Container{
		ClassifierLocator: locator,
		logger:            di.Logger,
	}

	selected := classifier.NewSafeClassifier(backend, di.Logger)
	if cfg.Cache.Enabled {
		remote := di.Cache
		if remote == nil && cfg.Redis.Enabled {
			remote, err = cache.NewClient(cache.Config{
				Host:     cfg.Redis.Host,
				Port:     cfg.Redis.Port,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TLS:      cfg.Redis.TLS,
			}, di.Logger)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize cache: %v", err)
			}
		}
		container.Cache = remote
		container.ScoreCache = cache.NewScoreCache(remote, cfg.Cache.TTL, di.Logger)
		selected = classifier.NewCachedClassifier(
			selected,
			container.ScoreCache,
			classifier.WithCallTimeout(cfg.Moderation.Timeout),
		)
	}
	container.Classifier = selected

	serviceOpts := []moderation.ServiceOption{moderation.WithTimeout(cfg.Moderation.Timeout)}
	if cfg.Metrics.Enabled {
		serviceOpts = append(serviceOpts, moderation.WithObserver(prometheus.NewModerationObserver()))
	}
	container.Aggregator = metrics.NewAggregator()
	container.Moderator = moderation.NewService(
		di.Logger,
		selected,
		moderation.NewEngine(policy),
		container.Aggregator,
		serviceOpts...,
	)

	container.MiddlewareTransport = &middleware.Transport{
		PanicRecoverMiddleware: middleware.NewPanicRecoverMiddleware(di.Logger),
		RequestIDMiddleware:    middleware.NewRequestIDMiddleware(),
		CORSMiddleware:         middleware.NewCORSMiddleware(cfg.Server.CORSOrigins),
		MetricsMiddleware:      middleware.NewMetricsMiddleware(di.Logger),
	}
	container.HandlerTransport = handlers.HandlerTransport{
		ModerateHandler:   handlers.NewModerateHandler(di.Logger, container.Moderator),
		GetMetricsHandler: handlers.NewGetMetricsHandler(di.Logger, container.Moderator),
		GetVersionHandler: handlers.NewGetVersionHandler(di.Logger),
	}
	container.Routers = []router.ServerRouter{
		router.NewAPIRouter(container.MiddlewareTransport, container.HandlerTransport, cfg.Server.DocsURL),
	}

	di.Logger.WithFields(logrus.Fields{
		"backend":         selected.Name(),
		"text_threshold":  policy.TextThreshold,
		"image_threshold": policy.ImageThreshold,
		"cache":           cfg.Cache.Enabled,
	}).Info("moderation service initialized")

	return container, nil
}

// PurgeExpiredScores drops expired local cache entries until ctx is done.
func (c *Container) PurgeExpiredScores(ctx context.Context) {
	if c.ScoreCache == nil {
		return
	}
	ticker := time.NewTicker(cachePurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.ScoreCache.Purge(); n > 0 {
				c.logger.WithField("purged", n).Debug("expired classification scores purged")
			}
		}
	}
}

func (c *Container) Close() error {
	if c.Cache != nil {
		return c.Cache.Close()
	}
	return nil
}

// newBreaker returns a no-op breaker when max_failures is not positive.
func newBreaker(cfg *config.Config, backend string) httpx.CircuitBreaker {
	if cfg.Classifier.Breaker.MaxFailures <= 0 {
		return httpx.NoopCircuitBreaker{}
	}
	return httpx.NewCircuitBreaker(
		backend+"-classifier",
		cfg.Classifier.Breaker.Timeout,
		uint32(cfg.Classifier.Breaker.MaxFailures), //nolint:gosec
	)
}

func newHTTPClient(cfg *config.Config) httpx.Client {
	return httpx.NewFastHTTPClient(
		httpx.WithTimeout(cfg.Moderation.Timeout),
		httpx.WithUserAgent(version.AppName+"/"+version.Version),
	)
}

func newHuggingFaceClassifier(cfg *config.Config, logger *logrus.Logger) classifier.Classifier {
	return huggingface.New(
		logger,
		huggingface.WithHTTPClient(newHTTPClient(cfg)),
		huggingface.WithCircuitBreaker(newBreaker(cfg, classifier.BackendHuggingFace)),
		huggingface.WithBaseURL(cfg.HuggingFace.BaseURL),
		huggingface.WithAPIKey(cfg.HuggingFace.APIKey),
		huggingface.WithModels(cfg.HuggingFace.TextModel, cfg.HuggingFace.ImageModel),
	)
}

func newOpenAIClassifier(cfg *config.Config, logger *logrus.Logger) classifier.Classifier {
	return openai.New(
		openai.Config{
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		},
		logger,
		openai.WithHTTPClient(&http.Client{Timeout: cfg.Moderation.Timeout}),
		openai.WithCircuitBreaker(newBreaker(cfg, classifier.BackendOpenAI)),
	)
}

func newLocalClassifier(cfg *config.Config, logger *logrus.Logger) classifier.Classifier {
	serving := local.NewServingClient(
		newHTTPClient(cfg),
		newBreaker(cfg, classifier.BackendLocal),
		local.ServingConfig{
			BaseURL:    cfg.Local.BaseURL,
			TextModel:  cfg.Local.TextModel,
			ImageModel: cfg.Local.ImageModel,
		},
	)
	return local.New(serving, serving, local.Config{
		TargetLabel:     cfg.Local.TargetLabel,
		ComplementLabel: cfg.Local.ComplementLabel,
	}, logger)
}
