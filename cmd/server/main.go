package main

import (
	"context"
	"fmt"
	"hos-trip-service/internal/adapters/cache"
	"hos-trip-service/internal/adapters/distance"
	"hos-trip-service/internal/adapters/messaging"
	"hos-trip-service/internal/adapters/repositories"
	"hos-trip-service/internal/api"
	"hos-trip-service/internal/api/handlers"
	"hos-trip-service/internal/config"
	"hos-trip-service/internal/platform/db"
	"hos-trip-service/internal/ports"
	"log"
	"net/http"
	"time"
)

// main is the application composition root.
// It wires concrete adapters (SQL, distance providers, Redis, RabbitMQ) behind ports and starts the HTTP server.
func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := repositories.InitSchema(conn); err != nil {
		log.Fatal(err)
	}
	if cfg.SeedPath != "" {
		n, err := repositories.SeedDistancesFromJSON(conn, cfg.SeedPath)
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("Seeded distance cache rows=%d path=%s", n, cfg.SeedPath)
	}

	provider, err := newDistanceProvider(cfg, conn)
	if err != nil {
		log.Fatal(err)
	}

	trips := &handlers.TripHandler{
		Repo:              repositories.NewSQLTripRepository(conn),
		Provider:          provider,
		Rules:             cfg.Rules,
		Location:          cfg.Location,
		DefaultDriverName: cfg.DefaultDriverName,
		DefaultVehicleID:  cfg.DefaultVehicleID,
	}

	if cfg.AMQPURL != "" {
		pub, err := messaging.DialRabbitMQ(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Fatal(err)
		}
		defer pub.Close()
		trips.Publisher = pub
		log.Printf("Publishing trip events exchange=%s", cfg.AMQPExchange)
	}

	router := api.NewRouter(trips)

	// Timeouts are tuned for cold-cache route planning (external API latency).
	log.Printf("Server listening addr=:%s db=%s provider=%s tz=%s", cfg.Port, cfg.DBDriver, cfg.DistanceProvider, cfg.Location)
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	log.Fatal(srv.ListenAndServe())
}

// newDistanceProvider builds the configured provider behind a distance cache:
// Redis when REDIS_URL is set, the SQL distance_cache table otherwise.
// Geocoding results are always cached in the SQL geocode_cache table.
func newDistanceProvider(cfg config.Config, conn *db.DB) (ports.DistanceProvider, error) {
	geocodeCache := cache.NewSQLGeocodeCache(conn)
	session := &http.Client{Timeout: 10 * time.Second}

	var provider ports.DistanceProvider
	switch cfg.DistanceProvider {
	case "ors":
		ors, err := distance.NewORSDistanceProvider(cfg.ORSAPIKey, session, geocodeCache)
		if err != nil {
			return nil, fmt.Errorf("distance provider: %w", err)
		}
		provider = ors
	default:
		geocoder := distance.NewCachingGeocoder(
			distance.NewNominatimGeocoder(cfg.NominatimURL, "hos-trip-service", session),
			geocodeCache,
		)
		geo, err := distance.NewGeodesicDistanceProvider(geocoder, cfg.AverageSpeedMPH)
		if err != nil {
			return nil, fmt.Errorf("distance provider: %w", err)
		}
		provider = geo
	}

	var distanceCache ports.DistanceCache = cache.NewSQLDistanceCache(conn)
	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("distance provider: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("distance provider: ping redis: %w", err)
		}
		distanceCache = cache.NewRedisDistanceCache(client, cfg.DistanceCacheTTL)
	}

	return distance.NewCachingDistanceProvider(provider, distanceCache), nil
}
