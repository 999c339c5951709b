// Package router defines how HTTP routes are registered for the API.
package router

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/railbook/train-reservation/internal/config"
    "github.com/railbook/train-reservation/internal/handler"
    "github.com/railbook/train-reservation/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance.  Currently it exposes only a health
// check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterCatalog registers the unauthenticated browse endpoints.
// Responses are cached in Redis when a client is available; with a
// nil client the cache middleware degrades to a no-op.
func RegisterCatalog(e *echo.Echo, h *handler.CatalogHandler, rdb *redis.Client) {
    cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)
    e.GET("/v1/trains", h.ListTrains, cache)
    e.GET("/v1/trains/:id/classes", h.ListTrainClasses, cache)
}

// RegisterScheduledBookings registers the authenticated
// scheduled-booking endpoints.  All routes execute the JWTAuth and
// role middleware before their handler, plus the Redis token-bucket
// rate limiter: the create endpoint in particular attracts bursts in
// the minutes before a tatkal window opens.
func RegisterScheduledBookings(e *echo.Echo, h *handler.ScheduledBookingHandler, jwtSecret string, rdb *redis.Client) {
    g := e.Group("/v1/scheduled-bookings")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole("CUSTOMER", "ADMIN"))
    g.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

    g.POST("", h.Create)
    g.GET("", h.List)
    g.POST("/:id/process", h.ProcessNow)
    g.DELETE("/:id", h.Cancel)
}
