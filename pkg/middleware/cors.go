package middleware

import (
	"strings"

	"github.com/NeuralTrust/ContentGuard/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

type corsMiddleware struct {
	config cors.Config
}

func NewCORSMiddleware(allowOrigins []string) Middleware {
	origins := "*"
	if len(allowOrigins) > 0 {
		origins = strings.Join(allowOrigins, ",")
	}
	return &corsMiddleware{
		config: cors.Config{
			AllowOrigins:  origins,
			AllowMethods:  strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
			AllowHeaders:  strings.Join([]string{fiber.HeaderContentType, common.RequestIDHeader}, ","),
			ExposeHeaders: common.RequestIDHeader,
		},
	}
}

func (m *corsMiddleware) Middleware() fiber.Handler {
	return cors.New(m.config)
}
