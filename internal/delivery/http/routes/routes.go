package routes

import (
	"classifieds/internal/delivery/http/handler"
	v1 "classifieds/internal/delivery/http/routes/v1"
	"classifieds/internal/metrics"
	"classifieds/internal/ws"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
)

type Registry struct {
	health *handler.HealthHandler
	ws     *ws.Handler
	v1     v1.Deps
}

func NewRegistry(health *handler.HealthHandler, wsHandler *ws.Handler, deps v1.Deps) *Registry {
	return &Registry{health: health, ws: wsHandler, v1: deps}
}

func (r *Registry) Register(app *fiber.App) {
	if app == nil {
		return
	}

	r.registerHealth(app)
	r.registerMetrics(app)
	r.registerRealtime(app)
	r.registerAPI(app)
}

func (r *Registry) registerHealth(app *fiber.App) {
	if r.health == nil {
		return
	}
	r.health.RegisterRoutes(app)
}

func (r *Registry) registerMetrics(app *fiber.App) {
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

// registerRealtime mounts the notification socket. Browsers cannot set headers on an
// upgrade, so the token may come from the access_token query parameter.
func (r *Registry) registerRealtime(app *fiber.App) {
	if r.ws == nil || r.v1.Auth == nil {
		return
	}
	app.Get("/ws", r.v1.Auth.Middleware(), r.ws.HandleNotificationsWS)
}

func (r *Registry) registerAPI(app *fiber.App) {
	api := app.Group("/api")
	RegisterV1(api.Group("/v1"), r.v1)
}
