package middleware

import (
	"github.com/NeuralTrust/ContentGuard/pkg/common"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type requestIDMiddleware struct{}

// NewRequestIDMiddleware propagates X-Request-Id, generating one when the
// client did not send it, into the response header and the user context.
func NewRequestIDMiddleware() Middleware {
	return &requestIDMiddleware{}
}

func (m *requestIDMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(common.RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(common.RequestIDHeader, id)
		c.Locals(common.RequestIDContextKey, id)
		c.SetUserContext(common.WithRequestID(c.UserContext(), id))
		return c.Next()
	}
}
