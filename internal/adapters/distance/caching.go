package distance

import (
	"context"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"log"
)

// CachingDistanceProvider serves distances from a cache, falling back to the
// wrapped provider and storing what it returns. Cache write failures are logged
// and otherwise ignored.
type CachingDistanceProvider struct {
	next  ports.DistanceProvider
	cache ports.DistanceCache
}

func NewCachingDistanceProvider(next ports.DistanceProvider, cache ports.DistanceCache) *CachingDistanceProvider {
	return &CachingDistanceProvider{next: next, cache: cache}
}

func (c *CachingDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	origin, destination = normalize(origin), normalize(destination)

	r, ok, err := c.cache.Get(ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("get distance cache: %w", err)
	}
	if ok {
		return r, nil
	}

	r, err = c.next.GetDistance(ctx, origin, destination)
	if err != nil {
		return ports.DistanceResult{}, err
	}

	if err := c.cache.Put(ctx, origin, destination, r); err != nil {
		log.Printf("distance cache write failed: %v", err)
	}

	return r, nil
}

// CachingGeocoder is the Geocoder counterpart of CachingDistanceProvider.
type CachingGeocoder struct {
	next  ports.Geocoder
	cache ports.GeocodeCache
}

func NewCachingGeocoder(next ports.Geocoder, cache ports.GeocodeCache) *CachingGeocoder {
	return &CachingGeocoder{next: next, cache: cache}
}

func (c *CachingGeocoder) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	key := normalize(address)

	hits, err := c.cache.GetMany(ctx, []string{key})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("get geocode cache: %w", err)
	}
	if coord, ok := hits[key]; ok {
		return coord, nil
	}

	coord, err := c.next.Geocode(ctx, key)
	if err != nil {
		return domain.Coordinates{}, err
	}

	if err := c.cache.PutMany(ctx, map[string]domain.Coordinates{key: coord}); err != nil {
		log.Printf("geocode cache write failed: %v", err)
	}

	return coord, nil
}
