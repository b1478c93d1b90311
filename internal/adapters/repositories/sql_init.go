package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"hos-trip-service/internal/platform/db"
	"os"
	"strings"
)

// Initialize the database schema. Statements are valid for both Postgres and SQLite.
func InitSchema(conn *db.DB) error {
	if conn == nil || conn.DB == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id TEXT PRIMARY KEY,
		current_location TEXT NOT NULL,
		pickup_location TEXT NOT NULL,
		dropoff_location TEXT NOT NULL,
		current_cycle_hours DOUBLE PRECISION NOT NULL,
		driver_name TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		total_miles DOUBLE PRECISION NOT NULL,
		estimated_driving_hours DOUBLE PRECISION NOT NULL,
		start_at TEXT NOT NULL,
		end_at TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	`

	createRoutePointsQuery := `
	CREATE TABLE IF NOT EXISTS route_points (
		trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		location TEXT NOT NULL,
		location_type TEXT NOT NULL,
		duration_hours DOUBLE PRECISION NOT NULL,
		distance_from_previous DOUBLE PRECISION NOT NULL,
		arrive_at TEXT NOT NULL,
		PRIMARY KEY (trip_id, seq)
	);
	`

	createLogSheetsQuery := `
	CREATE TABLE IF NOT EXISTS log_sheets (
		id TEXT PRIMARY KEY,
		trip_id TEXT NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		sheet_date TEXT NOT NULL,
		driver_name TEXT NOT NULL,
		vehicle_id TEXT NOT NULL,
		driving_hours DOUBLE PRECISION NOT NULL,
		on_duty_hours DOUBLE PRECISION NOT NULL,
		off_duty_hours DOUBLE PRECISION NOT NULL,
		sleeper_hours DOUBLE PRECISION NOT NULL,
		cycle_hours_used DOUBLE PRECISION NOT NULL,
		cycle_hours_remaining DOUBLE PRECISION NOT NULL,
		total_miles DOUBLE PRECISION NOT NULL,
		fuel_stops INTEGER NOT NULL,
		rest_stops INTEGER NOT NULL
	);
	`

	createLogEntriesQuery := `
	CREATE TABLE IF NOT EXISTS log_entries (
		log_sheet_id TEXT NOT NULL REFERENCES log_sheets(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		entry_time TEXT NOT NULL,
		status TEXT NOT NULL,
		location TEXT NOT NULL,
		remarks TEXT NOT NULL,
		PRIMARY KEY (log_sheet_id, seq)
	);
	`

	createDistanceCacheQuery := `
	CREATE TABLE IF NOT EXISTS distance_cache (
        origin TEXT NOT NULL,
        destination TEXT NOT NULL,
        distance_meters INTEGER NOT NULL,
        duration_seconds INTEGER NOT NULL,
        PRIMARY KEY (origin, destination)
    );
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
        address TEXT PRIMARY KEY,
        lon DOUBLE PRECISION NOT NULL,
        lat DOUBLE PRECISION NOT NULL
    );
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_log_sheets_trip_id
    ON log_sheets(trip_id, sheet_date);
	`

	statements := []string{
		createTripsQuery,
		createRoutePointsQuery,
		createLogSheetsQuery,
		createLogEntriesQuery,
		createDistanceCacheQuery,
		createGeocodeCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type DistanceSeed struct {
	Origin          string `json:"origin"`
	Destination     string `json:"destination"`
	DistanceMeters  int    `json:"distance_meters"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Populate the distance cache from a JSON file, so known lanes never reach the provider.
func SeedDistancesFromJSON(conn *db.DB, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed distances: read %q: %w", jsonPath, err)
	}

	var data []DistanceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed distances: parse json: %w", err)
	}

	rows := make([]DistanceSeed, 0, len(data))
	for i, item := range data {
		origin := strings.Join(strings.Fields(item.Origin), " ")
		dest := strings.Join(strings.Fields(item.Destination), " ")
		if origin == "" || dest == "" {
			return 0, fmt.Errorf("seed distances: item at index %d: origin and destination cannot be empty", i+1)
		}
		if item.DistanceMeters < 0 || item.DurationSeconds < 0 {
			return 0, fmt.Errorf("seed distances: item at index %d: negative distance or duration", i+1)
		}
		rows = append(rows, DistanceSeed{
			Origin:          origin,
			Destination:     dest,
			DistanceMeters:  item.DistanceMeters,
			DurationSeconds: item.DurationSeconds,
		})
	}

	tx, err := conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("seed distances: begin tx: %w", err)
	}
	defer tx.Rollback()

	query := conn.Rebind(`
	INSERT INTO distance_cache (
		origin,
		destination,
		distance_meters,
		duration_seconds
	)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = excluded.distance_meters,
		duration_seconds = excluded.duration_seconds;
	`)
	stmt, err := tx.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("seed distances: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.Exec(r.Origin, r.Destination, r.DistanceMeters, r.DurationSeconds); err != nil {
			return 0, fmt.Errorf("seed distances: insert %q -> %q: %w", r.Origin, r.Destination, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed distances: commit tx: %w", err)
	}

	return len(rows), nil
}
