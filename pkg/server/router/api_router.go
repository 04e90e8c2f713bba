package router

import (
	"github.com/NeuralTrust/ContentGuard/pkg/common"
	handlers "github.com/NeuralTrust/ContentGuard/pkg/handlers/http"
	"github.com/NeuralTrust/ContentGuard/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

type apiRouter struct {
	middlewareTransport *middleware.Transport
	handlerTransport    handlers.HandlerTransport
	docsURL             string
}

func NewAPIRouter(
	middlewareTransport *middleware.Transport,
	handlerTransport handlers.HandlerTransport,
	docsURL string,
) ServerRouter {
	return &apiRouter{
		middlewareTransport: middlewareTransport,
		handlerTransport:    handlerTransport,
		docsURL:             docsURL,
	}
}

func (r *apiRouter) BuildRoutes(router *fiber.App) error {
	ht := r.handlerTransport
	if ht.ModerateHandler == nil || ht.GetMetricsHandler == nil || ht.GetVersionHandler == nil {
		return ErrInvalidHandlerTransport
	}

	if r.middlewareTransport != nil {
		for _, h := range r.middlewareTransport.GetMiddlewares() {
			router.Use(h)
		}
	}

	router.Static("/swagger.json", "./docs/swagger.json")
	router.Get("/docs/*", swagger.New(swagger.Config{
		URL: r.docsURL,
	}))

	router.Get("/version", ht.GetVersionHandler.Handle)

	router.Post(common.ModerateRoute, ht.ModerateHandler.Handle)
	router.Get(common.MetricsRoute, ht.GetMetricsHandler.Handle)

	return nil
}
