package ports

import (
	"context"
	"hos-trip-service/internal/domain"
)

// Geocoder resolves a free-form address to coordinates.
// It returns an error wrapping ErrLocationNotFound when nothing matches.
type Geocoder interface {
	Geocode(ctx context.Context, address string) (domain.Coordinates, error)
}

// Cache of address -> coordinate mappings.
type GeocodeCache interface {
	GetMany(ctx context.Context, addresses []string) (map[string]domain.Coordinates, error)
	PutMany(ctx context.Context, results map[string]domain.Coordinates) error
}
