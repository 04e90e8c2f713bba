package http

import (
	"github.com/gofiber/fiber/v2"
)

type Handler interface {
	Handle(c *fiber.Ctx) error
}

type HandlerTransport struct {
	ModerateHandler   Handler
	GetMetricsHandler Handler
	GetVersionHandler Handler
}
