package distance

import (
	"context"
	"errors"
	"fmt"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"io"
	"net/http"
)

// ORSDistanceProvider implements DistanceProvider and Geocoder using OpenRouteService.
//
// It coordinates:
//   - Address normalization
//   - Geocoding through an optional persistent cache
//   - Driving distance via the matrix endpoint, with retry/backoff
//
// The provider is safe for concurrent use.
type ORSDistanceProvider struct {
	client   retryClient
	apiKey   string
	baseURL  string
	profile  string
	geocoder ports.Geocoder
}

// NewORSDistanceProvider builds a provider for the driving-hgv profile.
// A nil session uses a client with a 10 second timeout; a nil geocodeCache disables caching.
func NewORSDistanceProvider(
	apiKey string,
	session *http.Client,
	geocodeCache ports.GeocodeCache,
) (*ORSDistanceProvider, error) {
	if apiKey == "" {
		return nil, errors.New("ORS api key is empty")
	}

	provider := &ORSDistanceProvider{
		client:  newRetryClient(session),
		apiKey:  apiKey,
		baseURL: "https://api.openrouteservice.org",
		profile: "driving-hgv",
	}

	provider.geocoder = provider
	if geocodeCache != nil {
		provider.geocoder = NewCachingGeocoder(provider, geocodeCache)
	}

	return provider, nil
}

func (o *ORSDistanceProvider) GetDistance(
	ctx context.Context,
	origin string,
	destination string,
) (_ ports.DistanceResult, err error) {
	defer obs.Time(ctx, "ors.GetDistance")(&err)

	normOrigin := normalize(origin)
	normDestination := normalize(destination)
	if normOrigin == "" || normDestination == "" {
		return ports.DistanceResult{}, errors.New("get ORS distance: origin and destination must be non-empty")
	}

	originCoord, err := o.geocoder.Geocode(ctx, normOrigin)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("geocode origin %q: %w", normOrigin, err)
	}

	destinationCoord, err := o.geocoder.Geocode(ctx, normDestination)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("geocode destination %q: %w", normDestination, err)
	}

	result, err := o.fetchMatrixCell(ctx, originCoord, destinationCoord)
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("fetching matrix %q -> %q: %w", normOrigin, normDestination, err)
	}

	return result, nil
}

func (o *ORSDistanceProvider) newRequest(
	ctx context.Context,
	method string,
	url string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", o.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}
