package main

import (
	"context"
	"log"
	"math/rand"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/aqi-forecast/internal/api/http"
	"github.com/i474232898/aqi-forecast/internal/bootstrap"
	"github.com/i474232898/aqi-forecast/internal/config"
	"github.com/i474232898/aqi-forecast/internal/logger"
	"github.com/i474232898/aqi-forecast/internal/metrics"
	"github.com/i474232898/aqi-forecast/internal/mood"
	"github.com/i474232898/aqi-forecast/internal/scheduler"
	"github.com/i474232898/aqi-forecast/internal/source"
)

const serviceName = "aqi-forecast"

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	// Shared HTTP client for remote artifacts and CSVs.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}
	fetcher := source.NewFetcher(httpClient)

	// Model and history must both load before any traffic is served.
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 2*cfg.HTTPTimeout+10*time.Second)
	comps, err := bootstrap.Load(loadCtx, cfg, fetcher, zlog)
	cancelLoad()
	if err != nil {
		zlog.Fatal("startup failed", zap.Error(err))
	}

	// Periodic audit of the model artifact and historical source.
	sched := scheduler.New(cfg, fetcher, comps, zlog.Named("scheduler"))
	if err := sched.Start(); err != nil {
		zlog.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	app := httpapi.NewApp(serviceName)

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "${time} | ${status} | ${latency} | ${locals:requestid} | ${method} ${path}\n",
	}))
	app.Use(recover.New())
	app.Use(httpapi.CORS(cfg.CORSAllowOrigins))

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	opts := httpapi.Options{
		DefaultHorizonDays: cfg.DefaultHorizonDays,
		Readiness: func(ctx context.Context) (interface{}, bool) {
			status := sched.Status()
			summary, err := comps.Summary(ctx)
			if err != nil {
				return fiber.Map{"audit": status, "error": err.Error()}, false
			}
			return fiber.Map{"audit": status, "serving": summary}, status.OK
		},
	}
	if cfg.RateLimitRPS > 0 {
		opts.ForecastLimiter = httpapi.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)
	}

	// API routes.
	companion := mood.NewCompanion(rand.New(rand.NewSource(time.Now().UnixNano())))
	httpapi.RegisterRoutes(app, comps.Service, companion, opts)

	// Start server with graceful shutdown
	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Warn("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
