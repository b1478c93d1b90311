package distance

import (
	"context"
	"encoding/json"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/obs"
	"hos-trip-service/internal/ports"
	"net/http"
	"strconv"
	"strings"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org"

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// NominatimGeocoder implements Geocoder against an OpenStreetMap Nominatim server.
// Nominatim's usage policy requires an identifying User-Agent.
type NominatimGeocoder struct {
	client    retryClient
	baseURL   string
	userAgent string
}

// NewNominatimGeocoder returns a geocoder for baseURL, or the public server when it is empty.
func NewNominatimGeocoder(baseURL, userAgent string, session *http.Client) *NominatimGeocoder {
	if baseURL == "" {
		baseURL = defaultNominatimURL
	}
	if userAgent == "" {
		userAgent = "hos-trip-service"
	}
	return &NominatimGeocoder{
		client:    newRetryClient(session),
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, address string) (_ domain.Coordinates, err error) {
	defer obs.Time(ctx, "nominatim.Geocode")(&err)

	norm := normalize(address)
	if norm == "" {
		return domain.Coordinates{}, fmt.Errorf("geocode: address must be non-empty: %w", ports.ErrLocationNotFound)
	}

	resp, err := g.client.doWithRetry(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search", nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", g.userAgent)
		req.Header.Set("Accept", "application/json")

		q := req.URL.Query()
		q.Set("q", norm)
		q.Set("format", "json")
		q.Set("limit", "1")
		req.URL.RawQuery = q.Encode()
		return req, nil
	})
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return domain.Coordinates{}, fmt.Errorf("decode nominatim response: %w", err)
	}
	if len(places) == 0 {
		return domain.Coordinates{}, fmt.Errorf("no geocode results for %q: %w", address, ports.ErrLocationNotFound)
	}

	lat, err := strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse latitude %q: %w", places[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return domain.Coordinates{}, fmt.Errorf("parse longitude %q: %w", places[0].Lon, err)
	}

	return domain.Coordinates{Lon: lon, Lat: lat}, nil
}
