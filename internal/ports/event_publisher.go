package ports

import (
	"context"
	"hos-trip-service/internal/domain"
)

// TripEventPublisher notifies downstream consumers about saved trips.
type TripEventPublisher interface {
	PublishTripScheduled(ctx context.Context, event domain.TripScheduledEvent) error
}
