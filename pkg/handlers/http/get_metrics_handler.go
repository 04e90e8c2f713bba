package http

import (
	"github.com/NeuralTrust/ContentGuard/pkg/app/moderation"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getMetricsHandler struct {
	logger    *logrus.Logger
	moderator moderation.Moderator
}

func NewGetMetricsHandler(logger *logrus.Logger, moderator moderation.Moderator) Handler {
	return &getMetricsHandler{
		logger:    logger,
		moderator: moderator,
	}
}

// Handle @Summary Get moderation metrics
// @Description Returns the counters aggregated since process start
// @Tags Moderation
// @Produce json
// @Success 200 {object} moderation.Snapshot "Metrics snapshot"
// @Router /api/metrics [get]
func (h *getMetricsHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.moderator.Metrics())
}
