package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/service"
)

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, dashboardSvc *service.DashboardService, assetSvc *service.AssetService, health domain.HealthChecker, log logrus.FieldLogger) {
	handler := NewHandler(dashboardSvc, assetSvc, health, log)

	// Health check and metrics
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Dashboard page and figures
	app.Get("/", handler.GetDashboard)
	app.Get("/charts/trends.png", handler.GetTrendsChart)
	app.Get("/charts/weather.png", handler.GetWeatherChart)
	app.Get("/assets/logo", handler.GetLogo)

	// API v1 routes
	api := app.Group("/api/v1")
	{
		api.Get("/bounds", handler.GetBounds)
		api.Get("/trends", handler.GetTrends)
		api.Get("/totals", handler.GetTotals)
		api.Get("/correlation", handler.GetCorrelation)
	}
}
