package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NewRelic NewRelicConfig
	HOS      HOSConfig
	Planner  PlannerConfig
	Logbook  LogbookConfig
	Route    RouteConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// HOSConfig holds the regulatory limits. Defaults are the US federal
// property-carrying ruleset; alternate rulesets override per value.
type HOSConfig struct {
	MaxDailyDrivingHours      float64
	MaxDailyOnDutyHours       float64
	MinOffDutyHours           float64
	MaxContinuousDrivingHours float64
	MinBreakMinutes           float64
	MaxCycleHours             float64
	CycleDays                 int
}

// PlannerConfig holds scheduling knobs.
type PlannerConfig struct {
	MaxFuelDistanceMiles float64
	MergeBufferMiles     float64
	FuelStopMinutes      float64
	PickupDwellHours     float64
	DeliveryDwellHours   float64
	ResetLegProportion   float64
}

// LogbookConfig holds daily-log rendering knobs.
type LogbookConfig struct {
	GridResolutionMinutes int
	DistanceSplitMode     string
}

// RouteConfig selects and configures the route provider.
type RouteConfig struct {
	Provider    string // "static" or "osrm"
	OSRMBaseURL string
}

// Load loads configuration from a .env file (if present) and the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "trucklog"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "trucklog-service"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		HOS: HOSConfig{
			MaxDailyDrivingHours:      getFloatEnv("HOS_MAX_DAILY_DRIVING_HOURS", 11),
			MaxDailyOnDutyHours:       getFloatEnv("HOS_MAX_DAILY_ON_DUTY_HOURS", 14),
			MinOffDutyHours:           getFloatEnv("HOS_MIN_OFF_DUTY_HOURS", 10),
			MaxContinuousDrivingHours: getFloatEnv("HOS_MAX_CONTINUOUS_DRIVING_HOURS", 8),
			MinBreakMinutes:           getFloatEnv("HOS_MIN_BREAK_MINUTES", 30),
			MaxCycleHours:             getFloatEnv("HOS_MAX_CYCLE_HOURS", 70),
			CycleDays:                 getIntEnv("HOS_CYCLE_DAYS", 8),
		},
		Planner: PlannerConfig{
			MaxFuelDistanceMiles: getFloatEnv("PLANNER_MAX_FUEL_DISTANCE_MILES", 1000),
			MergeBufferMiles:     getFloatEnv("PLANNER_MERGE_BUFFER_MILES", 50),
			FuelStopMinutes:      getFloatEnv("PLANNER_FUEL_STOP_MINUTES", 30),
			PickupDwellHours:     getFloatEnv("PLANNER_PICKUP_DWELL_HOURS", 1),
			DeliveryDwellHours:   getFloatEnv("PLANNER_DELIVERY_DWELL_HOURS", 1),
			ResetLegProportion:   getFloatEnv("PLANNER_RESET_LEG_PROPORTION", 0.8),
		},
		Logbook: LogbookConfig{
			GridResolutionMinutes: getIntEnv("HOS_GRID_RESOLUTION_MINUTES", 15),
			DistanceSplitMode:     getEnv("HOS_DISTANCE_SPLIT_MODE", "first_segment"),
		},
		Route: RouteConfig{
			Provider:    getEnv("ROUTE_PROVIDER", "static"),
			OSRMBaseURL: getEnv("OSRM_BASE_URL", "https://router.project-osrm.org"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
