package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hos-trip-service/internal/platform/db"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"strings"
)

// SQLDistanceCache is a SQL-backed cache for origin->destination distance results.
// Keys are expected to be consistent (e.g., already normalized) by the caller.
type SQLDistanceCache struct {
	DB *db.DB
}

func NewSQLDistanceCache(conn *db.DB) *SQLDistanceCache {
	return &SQLDistanceCache{DB: conn}
}

// Fetch the cached distance for one origin/destination pair.
func (s *SQLDistanceCache) Get(
	ctx context.Context,
	origin string,
	destination string,
) (_ ports.DistanceResult, _ bool, err error) {
	defer obs.Time(ctx, "distance.cache.Get")(&err)

	if s.DB == nil {
		return ports.DistanceResult{}, false, errors.New("distance cache: db is nil")
	}

	if origin == "" || destination == "" {
		return ports.DistanceResult{}, false, errors.New("get distance cache: origin and destination must not be empty")
	}

	q := s.DB.Rebind(`
	SELECT distance_meters, duration_seconds
    FROM distance_cache
    WHERE origin = ? AND destination = ?;
	`)

	var r ports.DistanceResult
	err = s.DB.QueryRowContext(ctx, q, origin, destination).Scan(&r.DistanceMeters, &r.DurationSeconds)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.DistanceResult{}, false, nil
	}
	if err != nil {
		return ports.DistanceResult{}, false, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}

	return r, true, nil
}

// Store one distance result, replacing any previous value for the pair.
func (s *SQLDistanceCache) Put(
	ctx context.Context,
	origin string,
	destination string,
	r ports.DistanceResult,
) error {
	return s.PutMany(ctx, origin, map[string]ports.DistanceResult{destination: r})
}

// Store many cached distance results for a single origin.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, s.DB.Rebind(`
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds)
    VALUES (?, ?, ?, ?)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = excluded.distance_meters,
		duration_seconds = excluded.duration_seconds;
	`))
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}
