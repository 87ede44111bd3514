package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"trucklog/internal/app"
	"trucklog/internal/config"
	"trucklog/internal/handler"
	"trucklog/internal/hos"
	"trucklog/internal/logbook"
	"trucklog/internal/planner"
	internalRedis "trucklog/internal/redis"
	"trucklog/internal/repository/postgres"
	"trucklog/internal/route"
	"trucklog/internal/service"
)

func main() {
	setupLogging()

	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Error().Err(err).Msg("failed to initialize New Relic")
		} else {
			log.Info().Str("app", cfg.NewRelic.AppName).Msg("New Relic enabled")
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// setupLogging configures the global zerolog logger. Pretty console output by
// default; set LOG_FORMAT=json for machine-readable logs.
func setupLogging() {
	if os.Getenv("LOG_FORMAT") != "json" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if level, err := zerolog.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil && level != zerolog.NoLevel {
		zerolog.SetGlobalLevel(level)
	}
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	driverRepo := postgres.NewDriverRepository(db)
	tripRepo := postgres.NewTripRepository(db)
	stopRepo := postgres.NewStopRepository(db)
	periodRepo := postgres.NewPeriodRepository(db)
	cycleRepo := postgres.NewCycleRepository(db)

	// Initialize the compliance core.
	limits := hos.Limits{
		MaxDailyDrivingHours:      cfg.HOS.MaxDailyDrivingHours,
		MaxDailyOnDutyHours:       cfg.HOS.MaxDailyOnDutyHours,
		MinOffDutyHours:           cfg.HOS.MinOffDutyHours,
		MaxContinuousDrivingHours: cfg.HOS.MaxContinuousDrivingHours,
		MinBreakMinutes:           cfg.HOS.MinBreakMinutes,
		MaxCycleHours:             cfg.HOS.MaxCycleHours,
		CycleDays:                 cfg.HOS.CycleDays,
	}
	engine := hos.NewEngine(limits)

	plannerCfg := planner.Config{
		MaxFuelDistanceMiles: cfg.Planner.MaxFuelDistanceMiles,
		MergeBufferMiles:     cfg.Planner.MergeBufferMiles,
		FuelStopMinutes:      cfg.Planner.FuelStopMinutes,
		PickupDwellHours:     cfg.Planner.PickupDwellHours,
		DeliveryDwellHours:   cfg.Planner.DeliveryDwellHours,
		ResetLegProportion:   cfg.Planner.ResetLegProportion,
	}
	tripPlanner := planner.New(engine, plannerCfg)

	segmenter := logbook.New(engine, logbook.Config{
		GridResolutionMinutes: cfg.Logbook.GridResolutionMinutes,
		DistanceSplitMode:     logbook.SplitMode(cfg.Logbook.DistanceSplitMode),
	})

	var routeProvider route.Provider
	switch cfg.Route.Provider {
	case "osrm":
		routeProvider = route.NewOSRMProvider(cfg.Route.OSRMBaseURL)
	default:
		routeProvider = route.NewStaticProvider()
	}

	// Initialize services.
	notificationService := service.NewNotificationService()
	cycleService := service.NewCycleService(cycleRepo, lockStore, cacheStore, limits)
	tripService := service.NewTripService(
		db, tripRepo, stopRepo, periodRepo, driverRepo,
		cycleService, routeProvider, tripPlanner, engine, plannerCfg,
		cacheStore, notificationService,
	)
	driverService := service.NewDriverService(driverRepo)
	logService := service.NewLogService(tripRepo, periodRepo, segmenter)

	// Initialize handlers.
	driverHandler := handler.NewDriverHandler(driverService, cycleService)
	tripHandler := handler.NewTripHandler(tripService)
	logHandler := handler.NewLogHandler(logService)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		DriverHandler: driverHandler,
		TripHandler:   tripHandler,
		LogHandler:    logHandler,
		RedisClient:   redisClient,
		NewRelicApp:   nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
