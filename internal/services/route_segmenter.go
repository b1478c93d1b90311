package services

import (
	"context"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"strings"
	"time"
)

// SegmentRoute resolves the legs of a trip through the distance provider.
//
// A leg current->pickup is only resolved when current is non-empty and differs
// from the pickup. Pairs whose names match after whitespace normalization are
// zero-length legs and never reach the provider. Rest and fuel stops are not
// placed here: they depend on elapsed driving time, which is the scheduler's job.
func SegmentRoute(
	ctx context.Context,
	current string,
	pickup string,
	dropoff string,
	provider ports.DistanceProvider,
	rules Rules,
) (*domain.Segmentation, error) {
	current = normalizeLocation(current)
	pickup = normalizeLocation(pickup)
	dropoff = normalizeLocation(dropoff)

	if pickup == "" {
		return nil, domain.NewValidationError("pickup_location", "is required")
	}
	if dropoff == "" {
		return nil, domain.NewValidationError("dropoff_location", "is required")
	}

	seg := &domain.Segmentation{Legs: make([]domain.Leg, 0, 2)}

	approachMiles := 0.0
	if current != "" && !sameLocation(current, pickup) {
		leg, err := resolveLeg(ctx, provider, current, pickup)
		if err != nil {
			return nil, err
		}
		seg.Legs = append(seg.Legs, leg)
		seg.LegsBeforePickup = 1
		approachMiles = leg.Miles
	}

	haul, err := resolveLeg(ctx, provider, pickup, dropoff)
	if err != nil {
		return nil, err
	}
	seg.Legs = append(seg.Legs, haul)

	for _, l := range seg.Legs {
		seg.TotalMiles += l.Miles
	}

	seg.Pickup = domain.Waypoint{
		Sequence:             1,
		Location:             pickup,
		Type:                 domain.LocationPickup,
		DurationHours:        rules.PickupDuration.Hours(),
		DistanceFromPrevious: approachMiles,
	}
	seg.Dropoff = domain.Waypoint{
		Sequence:             2,
		Location:             dropoff,
		Type:                 domain.LocationDropoff,
		DurationHours:        rules.DropoffDuration.Hours(),
		DistanceFromPrevious: haul.Miles,
	}

	return seg, nil
}

func resolveLeg(ctx context.Context, provider ports.DistanceProvider, origin, destination string) (domain.Leg, error) {
	if sameLocation(origin, destination) {
		return domain.Leg{Origin: origin, Destination: destination}, nil
	}

	r, err := provider.GetDistance(ctx, origin, destination)
	if err != nil {
		return domain.Leg{}, &domain.LocationUnresolvableError{
			Origin:      origin,
			Destination: destination,
			Err:         err,
		}
	}

	return domain.Leg{
		Origin:      origin,
		Destination: destination,
		Miles:       float64(r.DistanceMeters) / domain.MetersPerMile,
		Duration:    time.Duration(r.DurationSeconds) * time.Second,
	}, nil
}

// normalizeLocation collapses whitespace so equal places compare equal.
func normalizeLocation(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sameLocation(a, b string) bool {
	return strings.EqualFold(a, b)
}
