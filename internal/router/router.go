// Package router registers the HTTP routes and their middleware chains.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/restaurant-table-service/internal/config"
	"github.com/iliyamo/restaurant-table-service/internal/handler"
	"github.com/iliyamo/restaurant-table-service/internal/middleware"
)

// RegisterRoutes registers the unauthenticated routes: the health check
// only, everything else sits behind staff auth.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the staff auth endpoints under /v1/auth.
// Register, login and refresh need no token; logout takes the refresh
// token in the body so it needs none either.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// Handlers bundles every staff-facing handler for route registration.
type Handlers struct {
	Sessions *handler.SessionHandler
	Orders   *handler.OrderHandler
	Billing  *handler.BillingHandler
	Splits   *handler.SplitHandler
	Tables   *handler.TableHandler
}

// RegisterStaff registers the protected API under /v1.  Every route
// requires a valid staff JWT; write access is narrowed per group
// (managers administer tables, the kitchen drives order statuses).
// Dashboard reads additionally pass through the Redis response cache,
// and the whole surface is rate limited.
func RegisterStaff(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	staff := e.Group("/v1",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole("MANAGER", "WAITER", "KITCHEN"),
		rl,
	)

	// table-session lifecycle
	staff.POST("/sessions", h.Sessions.CheckIn)
	staff.GET("/sessions/waiting", h.Sessions.Waiting, cache)
	staff.GET("/sessions/:id", h.Sessions.Get)
	staff.PUT("/sessions/:id/seat", h.Sessions.Seat)
	staff.PUT("/sessions/:id/checkout", h.Sessions.Checkout)
	staff.DELETE("/sessions/:id", h.Sessions.Remove)

	// ordering; status transitions are driven by the stations and the
	// floor, not by managers
	staff.POST("/orders", h.Orders.Submit)
	staff.PATCH("/orders/:id/status", h.Orders.UpdateStatus, middleware.RequireRole("KITCHEN", "WAITER"))
	staff.POST("/orders/status", h.Orders.BulkStatus, middleware.RequireRole("KITCHEN", "WAITER"))
	staff.DELETE("/orders/:id/items/:itemID", h.Orders.DeleteItem)
	staff.GET("/sessions/:id/orders", h.Orders.SessionOrders, cache)
	staff.GET("/departments/:name/orders", h.Orders.DepartmentOrders, cache)

	// billing and splits
	staff.POST("/sessions/:id/billing", h.Billing.Process)
	staff.GET("/sessions/:id/payments", h.Billing.List)
	staff.POST("/sessions/:id/splits", h.Splits.Create)
	staff.GET("/splits/:id", h.Splits.Get)
	staff.POST("/splits/:id/shares/:index/payments", h.Splits.PayShare)

	// floor overview, readable by every role
	staff.GET("/floor", h.Tables.Floor, cache)
	staff.GET("/tables", h.Tables.List)
	staff.GET("/tables/:id", h.Tables.Get)

	// table administration is manager-only
	admin := e.Group("/v1/tables",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole("MANAGER"),
		rl,
	)
	admin.POST("", h.Tables.Create)
	admin.PATCH("/:id", h.Tables.Update)
}
