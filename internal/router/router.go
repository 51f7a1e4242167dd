// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/medirota/coverage-platform/internal/config"
	"github.com/medirota/coverage-platform/internal/handler"
	"github.com/medirota/coverage-platform/internal/middleware"
	"github.com/medirota/coverage-platform/internal/model"
)

// Handlers groups everything the router needs to register the API.
type Handlers struct {
	Auth      *handler.AuthHandler
	Triage    *handler.TriageHandler
	Cost      *handler.CostHandler
	Recurring *handler.RecurringHandler
	Swaps     *handler.SwapHandler
	Bookings  *handler.BookingHandler
}

// Register sets up all routes.  /healthz and /v1/auth/* are public;
// everything else under /v1 requires a valid access token.  Admin
// operations additionally require the ADMIN role, swap offer/accept
// and the available listing require MEDIC.  rdb may be nil, in which
// case caching and rate limiting are disabled.
func Register(e *echo.Echo, h Handlers, jwtSecret string, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Distributed token-bucket rate limit in front of everything else.
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	auth := e.Group("/v1/auth")
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(jwtSecret))
	v1.Use(middleware.RequireRole(model.RoleAdmin, model.RoleMedic))
	v1.GET("/me", h.Auth.Me)
	v1.POST("/logout-all", h.Auth.LogoutAll)

	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/users", h.Auth.Register)
	admin.POST("/triage/run", h.Triage.Run)
	admin.POST("/coverage/out-of-territory", h.Cost.Evaluate)
	admin.POST("/bookings/recurring", h.Recurring.Create)
	admin.POST("/bookings/:id/assign", h.Bookings.Assign)
	admin.POST("/swaps/:id/approve", h.Swaps.Approve)
	admin.POST("/swaps/:id/deny", h.Swaps.Deny)

	medic := e.Group("/v1")
	medic.Use(middleware.JWTAuth(jwtSecret))
	medic.Use(middleware.RequireRole(model.RoleMedic))
	medic.POST("/swaps", h.Swaps.Offer)
	medic.POST("/swaps/:id/accept", h.Swaps.Accept)
	// The available listing excludes the caller's own offers, so the
	// Redis response cache keys it per caller as well as by method,
	// route and query.  One medic's listing must never be served to
	// another.
	medic.GET("/swaps/available", h.Swaps.Available, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
}
