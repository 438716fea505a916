// File: /main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"
	"motofuel-api/cache"
	"motofuel-api/config"
	"motofuel-api/database"
	"motofuel-api/jobs"
	"motofuel-api/metrics"
	"motofuel-api/middleware"
	"motofuel-api/repositories"
	"motofuel-api/routes"
	"motofuel-api/services"
)

var (
	rootCmd = &cobra.Command{
		Use:   "motofuel-api",
		Short: "Trip tracking and fuel analytics API for riders",
	}
	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE:  runServe,
	}
	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  runMigrate,
	}
	seed bool
)

func init() {
	serveCmd.Flags().BoolVar(&seed, "seed", false, "seed an empty database with development data")
	migrateCmd.Flags().BoolVar(&seed, "seed", false, "seed an empty database with development data")
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	log.SetFormatter(&log.JSONFormatter{})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("Unknown log level, using info")
	}

	db, err := database.Initialize(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, err
	}
	if seed {
		if err := database.SeedData(db); err != nil {
			log.WithError(err).Warn("Failed to seed database")
		}
	}
	return cfg, db, nil
}

func runMigrate(_ *cobra.Command, _ []string) error {
	_, db, err := setup()
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("Migrations applied")
	return nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, db, err := setup()
	if err != nil {
		return err
	}
	clock := cache.SystemClock()

	var (
		store   cache.Store
		sweeper jobs.Sweeper
	)
	switch cfg.CacheBackend {
	case "redis":
		redisStore, err := cache.NewRedisStore(cfg.RedisURL, clock)
		if err != nil {
			return err
		}
		defer redisStore.Close()
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		err = redisStore.Ping(pingCtx)
		cancel()
		if err != nil {
			return err
		}
		store = redisStore
	default:
		memoryStore := cache.NewMemoryStore(clock)
		store = memoryStore
		sweeper = memoryStore
	}

	tripRepo := repositories.NewTripRepository(db)
	motorcycleRepo := repositories.NewMotorcycleRepository(db)
	userRepo := repositories.NewUserRepository(db)
	fuelRepo := repositories.NewFuelRepository(db)

	ledger := services.NewFuelLedgerService(fuelRepo, clock)
	analytics := services.NewAnalyticsCache(ledger, store, clock, services.CacheTTLs{
		Combined:     cfg.FuelCacheTTL,
		Efficiency:   cfg.EfficiencyCacheTTL,
		CostAnalysis: cfg.CostCacheTTL,
	})
	fuelLevel := services.NewMotorFuelService(motorcycleRepo, cfg.DefaultTankCapacity, clock)
	svc := routes.Services{
		Trips:     services.NewTripService(tripRepo, motorcycleRepo, userRepo, clock),
		Records:   services.NewFuelRecordService(fuelRepo, motorcycleRepo, analytics, fuelLevel, clock),
		Analytics: analytics,
	}

	metrics.RegisterDefault()
	limiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)

	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("motofuel-api"))
	router.Use(routes.SetupCORS())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RateLimit(limiter, cfg.RateLimitPerMinute))
	router.Use(middleware.ValidateJSON())
	routes.SetupRoutes(router, svc, cfg.JWTSecret)

	sweepJob := jobs.NewCacheSweepJob(sweeper, limiter, cfg.CacheSweepInterval)
	sweepJob.Start()
	defer sweepJob.Stop()

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(log.Fields{
			"port":          cfg.Port,
			"cache_backend": cfg.CacheBackend,
		}).Info("Starting MotoFuel API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}
