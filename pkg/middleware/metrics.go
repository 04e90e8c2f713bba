package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/NeuralTrust/ContentGuard/pkg/common"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/prometheus"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const unmatchedRoute = "unmatched"

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		c.Locals(common.LatencyContextKey, startTime)

		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Route path, not the raw URL, to keep label cardinality bounded.
		route := unmatchedRoute
		if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
			route = r.Path
		}
		elapsed := time.Since(startTime)

		prometheus.HTTPRequestsTotal.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		if prometheus.Config.EnableLatency {
			prometheus.HTTPRequestLatency.WithLabelValues(route).Observe(float64(elapsed.Milliseconds()))
		}

		m.logger.WithFields(logrus.Fields{
			"method":      c.Method(),
			"route":       route,
			"status":      status,
			"duration_ms": elapsed.Milliseconds(),
			"request_id":  common.RequestID(c.UserContext()),
		}).Debug("request served")

		return err
	}
}
