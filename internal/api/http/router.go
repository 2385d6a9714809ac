package http

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/staff-directory/internal/api/http/handlers"
	"github.com/spec-kit/staff-directory/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	GraphQL        *handlers.GraphQLHandler
	AuthMiddleware *auth.AuthMiddleware
	RateLimiter    *RateLimiter
	Metrics        http.Handler
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Banner)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics))
	}

	chain := []fiber.Handler{}
	if cfg.RateLimiter != nil {
		chain = append(chain, cfg.RateLimiter.Handler())
	}
	chain = append(chain, cfg.AuthMiddleware.Handle)

	gql := app.Group("/graphql", chain...)
	gql.Post("", cfg.GraphQL.Post)
	gql.Get("", cfg.GraphQL.Get)
}
