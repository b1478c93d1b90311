package ports

import (
	"context"
	"errors"
	"hos-trip-service/internal/domain"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("requested resource not found")

// Port: a boundary for persisting scheduled trips.
type TripRepository interface {
	// Save the trip and its log sheets, assigning identifiers to any that are unset.
	SaveTrip(ctx context.Context, trip *domain.TripRecord) error
	// Retrieve a trip with its route and log sheets.
	GetTrip(ctx context.Context, id uuid.UUID) (*domain.TripRecord, error)
	// List trips, newest first.
	ListTrips(ctx context.Context) ([]*domain.TripRecord, error)
	// Retrieve a single log sheet.
	GetLogSheet(ctx context.Context, id uuid.UUID) (*domain.LogSheetRecord, error)
}
