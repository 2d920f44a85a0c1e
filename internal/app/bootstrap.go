package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"classifieds/internal/config"
	"classifieds/internal/delivery/http/handler"
	"classifieds/internal/delivery/http/middleware"
	"classifieds/internal/delivery/http/routes"
	v1 "classifieds/internal/delivery/http/routes/v1"
	"classifieds/internal/ws"

	"github.com/gofiber/fiber/v3"
)

type App struct {
	Fiber *fiber.App
	Hub   *ws.Hub
}

// New builds the HTTP application over an already wired container.
func New(c *Container) *App {
	f := fiber.New(fiber.Config{AppName: c.Config.App.AppName})

	registerGlobalMiddleware(f, c.Logger)

	auth := middleware.NewAuthMiddleware(c.JWT)
	registry := routes.NewRegistry(
		handler.NewHealthHandler(c.Checks),
		ws.NewHandler(c.Hub, middleware.UserIDFrom, c.Logger),
		v1.Deps{Auth: auth, Postings: c.Postings, Users: c.Users},
	)
	registry.Register(f)

	return &App{Fiber: f, Hub: c.Hub}
}

func Bootstrap(ctx context.Context, cfg config.Config, logger *log.Logger) (*App, func(context.Context) error, error) {
	c, err := NewContainer(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return New(c), c.Close, nil
}

// registerGlobalMiddleware installs access log, metrics and the error translator, in
// that order, so logged and measured statuses are the translated ones.
func registerGlobalMiddleware(app *fiber.App, logger *log.Logger) {
	if app == nil {
		return
	}

	app.Use(middleware.NewAccessLogMiddleware(logger).Middleware())
	app.Use(middleware.Metrics())
	app.Use(middleware.NewErrorMiddleware(logger).Middleware())
}

func ListenAddr(port string) (string, error) {
	p := strings.TrimSpace(port)
	if p == "" {
		return "", fmt.Errorf("empty HTTP port")
	}
	if strings.HasPrefix(p, ":") {
		return p, nil
	}
	return ":" + p, nil
}
