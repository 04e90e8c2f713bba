package http

import (
	"bytes"
	"strings"

	"github.com/NeuralTrust/ContentGuard/pkg/app/moderation"
	domain "github.com/NeuralTrust/ContentGuard/pkg/domain/moderation"
	"github.com/NeuralTrust/ContentGuard/pkg/handlers/http/request"
	"github.com/NeuralTrust/ContentGuard/pkg/infra/classifier"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type moderateHandler struct {
	logger    *logrus.Logger
	moderator moderation.Moderator
}

func NewModerateHandler(logger *logrus.Logger, moderator moderation.Moderator) Handler {
	return &moderateHandler{
		logger:    logger,
		moderator: moderator,
	}
}

// Handle @Summary Moderate content
// @Description Classifies a text or image and returns the moderation verdict. Classifier failures
// @Description are returned as a non-flagging result with the error field set.
// @Tags Moderation
// @Accept json
// @Accept octet-stream
// @Produce json
// @Param type query string false "Content type for raw uploads (text or image, default image)"
// @Param request body request.ModerateRequest true "Content to moderate"
// @Success 200 {object} moderation.Result "Moderation verdict"
// @Failure 400 {object} map[string]interface{} "Invalid request data"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /api/moderate [post]
func (h *moderateHandler) Handle(c *fiber.Ctx) error {
	req, err := h.parse(c)
	if err != nil {
		if domain.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to bind moderation request")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ErrInvalidJsonPayload})
	}

	result, err := h.moderator.Moderate(c.UserContext(), req)
	if err != nil {
		if domain.IsValidationError(err) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("moderation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": ErrInternalServer})
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

func (h *moderateHandler) parse(c *fiber.Ctx) (moderation.Request, error) {
	if isRawUpload(c.Get(fiber.HeaderContentType)) {
		contentType := c.Query("type", string(domain.ContentTypeImage))
		if _, err := domain.ParseContentType(contentType); err != nil {
			return moderation.Request{}, err
		}
		// fasthttp reuses the request buffer once the handler returns.
		return moderation.Request{
			Type:    contentType,
			Content: classifier.RawContent(bytes.Clone(c.Body())),
		}, nil
	}

	var req request.ModerateRequest
	if err := c.BodyParser(&req); err != nil {
		return moderation.Request{}, err
	}
	if err := req.Validate(); err != nil {
		return moderation.Request{}, err
	}
	return moderation.Request{
		Type:    req.Type,
		Content: classifier.TextContent(req.Content),
	}, nil
}

func isRawUpload(contentType string) bool {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	return strings.HasPrefix(contentType, "image/") ||
		strings.HasPrefix(contentType, fiber.MIMEOctetStream)
}
