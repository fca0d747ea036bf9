package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/bikeshare/dashboard/internal/config"
	"github.com/bikeshare/dashboard/internal/delivery/http"
	"github.com/bikeshare/dashboard/internal/domain"
	"github.com/bikeshare/dashboard/internal/repository/csv"
	"github.com/bikeshare/dashboard/internal/repository/postgres"
	"github.com/bikeshare/dashboard/internal/service"
)

func main() {
	// Load environment variables
	envErr := godotenv.Load()

	// Configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}
	log := config.NewLogger(cfg)
	if envErr != nil {
		log.Info("No .env file found, using system environment")
	}

	// Dependency Injection: dataset source, CSV unless a reachable database is configured
	var source domain.RentalSource = csv.NewSource(log)
	var health domain.HealthChecker
	key := cfg.DatasetPath
	if cfg.UsePostgres() {
		pool, err := connectDatabase(cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Warn("Could not connect to database")
			log.WithField("path", cfg.DatasetPath).Info("Falling back to CSV dataset")
		} else {
			defer pool.Close()
			repo := postgres.NewRentalRepository(pool)
			source, key, health = repo, cfg.DatabaseTable, repo
			log.WithField("table", cfg.DatabaseTable).Info("Connected to PostgreSQL")
		}
	}

	// Dependency Injection: Services
	cache := service.NewTableCache(source, log)
	dashboardSvc := service.NewDashboardService(cache, key, cfg.TrendYears, log)
	assetSvc := service.NewAssetService(cfg.LogoURL, cfg.AssetTimeout, log)

	preloadDataset(dashboardSvc, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Bike Sharing Dashboard v1.0",
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorHandler: http.NewErrorHandler(log),
	})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency}) ${locals:requestid}\n",
		Output: log.Out,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	// Routes
	http.SetupRoutes(app, dashboardSvc, assetSvc, health, log)

	// Graceful shutdown
	go func() {
		log.Infof("Server starting on %s", cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			log.WithError(err).Fatal("Server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.WithError(err).Warn("Server forced to shutdown")
	}
	log.Info("Server exited gracefully")
}

// connectDatabase opens a pool and pings it, since pgxpool connects lazily
func connectDatabase(url string) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// preloadDataset loads the dataset before the first request. A failure is
// logged and the server still starts, so the page can show the cause.
func preloadDataset(svc *service.DashboardService, log logrus.FieldLogger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	bounds, err := svc.Bounds(ctx)
	if err != nil {
		entry := log.WithError(err)
		var formatErr *domain.DataFormatError
		if errors.As(err, &formatErr) {
			entry = entry.WithFields(logrus.Fields{
				"source": formatErr.Source,
				"column": formatErr.Column,
				"row":    formatErr.Row,
			})
		}
		entry.Error("Failed to load dataset")
		return
	}

	log.WithFields(logrus.Fields{
		"source":   bounds.Source,
		"rows":     bounds.Rows,
		"min_date": bounds.MinDate,
		"max_date": bounds.MaxDate,
	}).Info("Dataset ready")
}
