package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/stitchfab/stitchfab/internal/metrics"
	"github.com/stitchfab/stitchfab/internal/server/http/handlers"
	"github.com/stitchfab/stitchfab/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.CommerceFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(metrics.Middleware())
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	authHandler := handlers.NewAuthHandler(facade)
	orderHandler := handlers.NewOrderHandler(facade)
	analyticsHandler := handlers.NewAnalyticsHandler(facade)

	engine.GET("/metrics", metrics.Handler())

	api := engine.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	orders := api.Group("/orders")
	orders.POST("/guest", orderHandler.CreateGuest)

	ordersAuth := orders.Group("")
	ordersAuth.Use(middleware.AuthRequired(facade))
	ordersAuth.POST("", orderHandler.Create)
	ordersAuth.GET("", orderHandler.List)
	ordersAuth.GET("/:id", orderHandler.Get)

	ordersAdmin := orders.Group("")
	ordersAdmin.Use(middleware.AuthRequired(facade), middleware.AdminRequired(facade))
	ordersAdmin.GET("/all/summary", orderHandler.ListAll)
	ordersAdmin.PUT("/:id", orderHandler.UpdateStatus)

	analytics := api.Group("/analytics")
	analytics.POST("/track", analyticsHandler.TrackEvent)
	analytics.POST("/landing/track", analyticsHandler.TrackLandingEvent)

	analyticsAdmin := analytics.Group("")
	analyticsAdmin.Use(middleware.AuthRequired(facade), middleware.AdminRequired(facade))
	analyticsAdmin.GET("/dashboard", analyticsHandler.Dashboard)
	analyticsAdmin.GET("/landing/:id", analyticsHandler.LandingDashboard)
	analyticsAdmin.GET("/flags", analyticsHandler.TrafficFlags)

	return engine
}
