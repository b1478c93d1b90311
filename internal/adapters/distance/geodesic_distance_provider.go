package distance

import (
	"context"
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"math"

	"github.com/golang/geo/s2"
)

const (
	EarthRadiusMeters = 6371008.8
	DefaultAverageMPH = 60.0
)

// GeodesicDistanceProvider estimates driving distance as the great-circle
// distance between geocoded points, and driving time at a constant average speed.
type GeodesicDistanceProvider struct {
	geocoder   ports.Geocoder
	averageMPH float64
}

func NewGeodesicDistanceProvider(geocoder ports.Geocoder, averageMPH float64) (*GeodesicDistanceProvider, error) {
	if geocoder == nil {
		return nil, errors.New("geodesic provider: geocoder is nil")
	}
	if averageMPH == 0 {
		averageMPH = DefaultAverageMPH
	}
	if math.IsNaN(averageMPH) || averageMPH < 0 {
		return nil, fmt.Errorf("geodesic provider: average speed must be positive, got %v", averageMPH)
	}
	return &GeodesicDistanceProvider{geocoder: geocoder, averageMPH: averageMPH}, nil
}

func (p *GeodesicDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "geodesic.GetDistance")(&err)

	from, err := p.geocoder.Geocode(ctx, origin)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("geocode origin %q: %w", origin, err)
	}
	to, err := p.geocoder.Geocode(ctx, destination)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("geocode destination %q: %w", destination, err)
	}

	meters := s2.LatLngFromDegrees(from.Lat, from.Lon).
		Distance(s2.LatLngFromDegrees(to.Lat, to.Lon)).
		Radians() * EarthRadiusMeters

	// A non-zero distance always takes at least one second.
	metersPerSecond := p.averageMPH * domain.MetersPerMile / 3600
	r := ports.DistanceResult{DistanceMeters: int(math.Round(meters))}
	if r.DistanceMeters > 0 {
		r.DurationSeconds = int(math.Ceil(meters / metersPerSecond))
	}
	return r, nil
}
