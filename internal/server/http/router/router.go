package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/polkiloo/bakehouse/internal/metrics"
	"github.com/polkiloo/bakehouse/internal/server/http/handlers"
	"github.com/polkiloo/bakehouse/internal/server/http/middleware"
)

// streamPaths are served as SSE and bypass response compression.
var streamPaths = []string{"/api/orders/track", "/api/staff/orders/stream"}

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.BakeryFacade, logger *slog.Logger, m *metrics.Metrics) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(m.Middleware())
	engine.Use(gzip.Gzip(gzip.DefaultCompression,
		gzip.WithExcludedPaths(streamPaths),
		gzip.WithDecompressFn(gzip.DefaultDecompressHandle),
	))

	authHandler := handlers.NewAuthHandler(facade)
	catalogHandler := handlers.NewCatalogHandler(facade)
	cartHandler := handlers.NewCartHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	streamHandler := handlers.NewStreamHandler(facade, facade, m)
	staffHandler := handlers.NewStaffHandler(facade)

	engine.GET("/healthz", handlers.Health(facade))
	engine.GET("/metrics", gin.WrapH(m.Handler()))

	api := engine.Group("/api")
	customer := api.Group("/customer")
	customer.POST("/register", authHandler.Register)
	customer.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.AuthRequired(facade))

	authed.POST("/customer/logout", authHandler.Logout)
	authed.GET("/customer/profile", authHandler.Profile)
	authed.PUT("/customer/profile", authHandler.UpdateProfile)

	authed.GET("/products", catalogHandler.List)

	authed.GET("/cart", cartHandler.View)
	authed.DELETE("/cart", cartHandler.Clear)
	authed.PUT("/cart/mode", cartHandler.SetMode)
	authed.POST("/cart/items", cartHandler.AddItem)
	authed.POST("/cart/items/:index/increment", cartHandler.Increment)
	authed.POST("/cart/items/:index/decrement", cartHandler.Decrement)
	authed.POST("/cart/coupon", cartHandler.ApplyCoupon)
	authed.DELETE("/cart/coupon", cartHandler.RemoveCoupon)

	authed.POST("/orders", orderHandler.Submit)
	authed.POST("/orders/:id/cancel", orderHandler.Cancel)
	authed.GET("/orders/history", orderHandler.History)
	authed.POST("/orders/repeat-last", orderHandler.RepeatLast)
	authed.GET("/orders/track", streamHandler.Track)
	authed.DELETE("/orders/track", streamHandler.StopTracking)

	staff := authed.Group("/staff")
	staff.Use(middleware.StaffOnly())
	staff.GET("/orders", staffHandler.Orders)
	staff.GET("/orders/stream", streamHandler.Dashboard)
	staff.POST("/orders/:id/advance", staffHandler.Advance)

	return engine
}
