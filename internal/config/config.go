package config

import (
	"fmt"
	"hos-trip-service/internal/services"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config is the process configuration read from the environment.
type Config struct {
	Port              string
	DBDriver          string
	DatabaseURL       string
	SeedPath          string
	DistanceProvider  string
	ORSAPIKey         string
	NominatimURL      string
	RedisURL          string
	DistanceCacheTTL  time.Duration
	AMQPURL           string
	AMQPExchange      string
	Location          *time.Location
	DefaultDriverName string
	DefaultVehicleID  string
	AverageSpeedMPH   float64
	Rules             services.Rules
}

// LoadDotEnv loads .env into the environment when present.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}
}

// Get returns the environment value for key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads and checks the configuration. Invalid values are errors rather than defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:              Get("PORT", "8080"),
		DBDriver:          Get("DB_DRIVER", "sqlite"),
		DatabaseURL:       Get("DATABASE_URL", "data/app.db"),
		SeedPath:          Get("SEED_PATH", ""),
		DistanceProvider:  Get("DISTANCE_PROVIDER", "geodesic"),
		ORSAPIKey:         Get("ORS_API_KEY", ""),
		NominatimURL:      Get("NOMINATIM_URL", ""),
		RedisURL:          Get("REDIS_URL", ""),
		AMQPURL:           Get("AMQP_URL", ""),
		AMQPExchange:      Get("AMQP_EXCHANGE", "hos.trips"),
		DefaultDriverName: Get("DEFAULT_DRIVER_NAME", "Driver"),
		DefaultVehicleID:  Get("DEFAULT_VEHICLE_ID", "Truck-001"),
		Rules:             services.DefaultRules(),
	}

	var err error

	switch cfg.DBDriver {
	case "pgx", "sqlite":
	default:
		return Config{}, fmt.Errorf("config: DB_DRIVER must be pgx or sqlite, got %q", cfg.DBDriver)
	}

	switch cfg.DistanceProvider {
	case "geodesic":
	case "ors":
		if cfg.ORSAPIKey == "" {
			return Config{}, fmt.Errorf("config: ORS_API_KEY is required for DISTANCE_PROVIDER=ors")
		}
	default:
		return Config{}, fmt.Errorf("config: DISTANCE_PROVIDER must be ors or geodesic, got %q", cfg.DistanceProvider)
	}

	if cfg.DistanceCacheTTL, err = time.ParseDuration(Get("DISTANCE_CACHE_TTL", "720h")); err != nil {
		return Config{}, fmt.Errorf("config: DISTANCE_CACHE_TTL: %w", err)
	}

	if cfg.Location, err = time.LoadLocation(Get("TIMEZONE", "UTC")); err != nil {
		return Config{}, fmt.Errorf("config: TIMEZONE: %w", err)
	}
	if !fixedOffset(cfg.Location, time.Now()) {
		return Config{}, fmt.Errorf("config: TIMEZONE %q observes daylight saving time; use a fixed-offset zone such as UTC or Etc/GMT+6", cfg.Location)
	}

	if cfg.AverageSpeedMPH, err = positiveFloat("AVERAGE_SPEED_MPH", 60); err != nil {
		return Config{}, err
	}

	hours := []struct {
		key string
		dst *time.Duration
	}{
		{"PICKUP_HOURS", &cfg.Rules.PickupDuration},
		{"DROPOFF_HOURS", &cfg.Rules.DropoffDuration},
		{"FUEL_STOP_HOURS", &cfg.Rules.FuelStopDuration},
	}
	for _, h := range hours {
		v, err := nonNegativeFloat(h.key, h.dst.Hours())
		if err != nil {
			return Config{}, err
		}
		*h.dst = time.Duration(v * float64(time.Hour))
	}

	if cfg.Rules.FuelIntervalMiles, err = positiveFloat("FUEL_INTERVAL_MILES", cfg.Rules.FuelIntervalMiles); err != nil {
		return Config{}, err
	}

	if err := cfg.Rules.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// fixedOffset reports whether loc keeps one UTC offset over the two years from now.
// Log sheet days must be exactly 24 hours long.
func fixedOffset(loc *time.Location, now time.Time) bool {
	_, want := now.In(loc).Zone()
	for d := 1; d <= 2*366; d++ {
		if _, off := now.AddDate(0, 0, d).In(loc).Zone(); off != want {
			return false
		}
	}
	return true
}

func nonNegativeFloat(key string, fallback float64) (float64, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v != v {
		return 0, fmt.Errorf("config: %s must be a non-negative number, got %q", key, raw)
	}
	return v, nil
}

func positiveFloat(key string, fallback float64) (float64, error) {
	v, err := nonNegativeFloat(key, fallback)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, fmt.Errorf("config: %s must be positive", key)
	}
	return v, nil
}
