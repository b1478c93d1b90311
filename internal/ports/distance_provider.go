package ports

import (
	"context"
	"errors"
)

// ErrLocationNotFound is returned by providers when a place name cannot be geocoded.
var ErrLocationNotFound = errors.New("location not found")

// Distance and travel duration between two locations.
type DistanceResult struct {
	DistanceMeters  int
	DurationSeconds int
}

// Contract for retrieving travel distance and duration between locations.
// Implementations must be safe for concurrent use.
type DistanceProvider interface {
	// Return travel distance and estimated duration between two locations.
	GetDistance(ctx context.Context, origin string, destination string) (DistanceResult, error)
}

// Optional cache for origin->destination results. Keys are expected to be
// normalized by the caller.
type DistanceCache interface {
	Get(ctx context.Context, origin, destination string) (DistanceResult, bool, error)
	Put(ctx context.Context, origin, destination string, r DistanceResult) error
}
