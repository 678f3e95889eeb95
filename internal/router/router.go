// Package router registers the public API routes.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/rutlandfarmpark/booking-api/internal/config"
	"github.com/rutlandfarmpark/booking-api/internal/handler"
	"github.com/rutlandfarmpark/booking-api/internal/middleware"
)

// Handlers bundles every handler the API exposes.
type Handlers struct {
	Availability *handler.AvailabilityHandler
	Booking      *handler.BookingHandler
	Shop         *handler.ShopHandler
	Webhook      *handler.WebhookHandler
	Catalog      *handler.CatalogHandler
	Contact      *handler.ContactHandler
}

// Register wires all routes onto the Echo instance.  The rate limiter
// covers the whole public surface except the webhook, which Stripe calls at
// its own cadence and must never be throttled.  Only the ticket catalog is
// cached; availability is computed fresh on every request.
func Register(e *echo.Echo, h Handlers, rdb *redis.Client, rl config.RateLimitConfig, cache config.CacheConfig) {
	e.GET("/healthz", handler.Health)

	// Webhook sits outside the rate-limited group.
	e.POST("/v1/webhooks/stripe", h.Webhook.Receive)

	v1 := e.Group("/v1")
	v1.Use(middleware.RateLimit(rl, rdb))

	v1.POST("/availability", h.Availability.Check)
	v1.POST("/bookings/checkout", h.Booking.Checkout)
	v1.GET("/bookings/:reference", h.Booking.Lookup)
	v1.POST("/shop/checkout", h.Shop.Checkout)
	v1.POST("/contact", h.Contact.Submit)

	v1.GET("/ticket-types", h.Catalog.List, middleware.CacheGET(cache, rdb))
}
