package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"trucklog/internal/handler"
	"trucklog/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	DriverHandler *handler.DriverHandler
	TripHandler   *handler.TripHandler
	LogHandler    *handler.LogHandler
	RedisClient   *redis.Client
	NewRelicApp   *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
		router.Use(middleware.TransactionEnricher())
	}

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Mutating driver and trip routes honor Idempotency-Key; reads and the
	// stateless feasibility check stay uncached.
	idempotency := middleware.IdempotencyMiddleware(deps.RedisClient)

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Driver routes.
		drivers := v1.Group("/drivers")
		drivers.Use(idempotency)
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
			drivers.GET("/:id/cycle", deps.DriverHandler.GetCycleState)
			drivers.POST("/:id/status", deps.DriverHandler.ChangeStatus)
		}

		// Standalone feasibility check.
		v1.POST("/feasibility", deps.TripHandler.CheckFeasibility)

		// Trip routes.
		trips := v1.Group("/trips")
		trips.Use(idempotency)
		{
			trips.POST("/plan", deps.TripHandler.Plan)
			trips.GET("", deps.TripHandler.GetAll)
			trips.GET("/:id", deps.TripHandler.Get)
			trips.POST("/:id/complete", deps.TripHandler.Complete)
			trips.POST("/:id/optimize", deps.TripHandler.Optimize)
			trips.GET("/:id/logs", deps.LogHandler.GetTripLogs)
		}
	}

	return router
}
