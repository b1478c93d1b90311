package distance

import (
	"context"
	"errors"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestORSDistanceProviderGetDistance(t *testing.T) {
	var (
		mu           sync.Mutex
		matrixCalls  int
		geocodeCalls int
	)

	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if got := r.Header.Get("Authorization"); got != "secret" {
			t.Errorf("Authorization = %q, want secret", got)
		}

		mu.Lock()
		defer mu.Unlock()

		switch r.URL.Path {
		case "/geocode/search":
			geocodeCalls++
			switch r.URL.Query().Get("text") {
			case "Chicago, IL":
				return jsonResponse(200, `{"features":[{"geometry":{"coordinates":[-87.63,41.88]}}]}`), nil
			case "Dallas, TX":
				return jsonResponse(200, `{"features":[{"geometry":{"coordinates":[-96.80,32.78]}}]}`), nil
			}
			return jsonResponse(200, `{"features":[]}`), nil
		case "/v2/matrix/driving-hgv":
			matrixCalls++
			if matrixCalls == 1 {
				return jsonResponse(503, `busy`), nil
			}
			return jsonResponse(200, `{"distances":[[1548000.4]],"durations":[[54000.6]]}`), nil
		}
		t.Errorf("unexpected path %s", r.URL.Path)
		return jsonResponse(404, ``), nil
	})}

	p, err := NewORSDistanceProvider("secret", client, nil)
	if err != nil {
		t.Fatalf("NewORSDistanceProvider: %v", err)
	}
	p.client.backoff = time.Millisecond

	r, err := p.GetDistance(context.Background(), "  Chicago,   IL ", "Dallas, TX")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if r.DistanceMeters != 1548000 || r.DurationSeconds != 54001 {
		t.Fatalf("result = %+v, want 1548000 m / 54001 s", r)
	}
	if matrixCalls != 2 {
		t.Fatalf("matrix calls = %d, want 2 (one retry after 503)", matrixCalls)
	}
	if geocodeCalls != 2 {
		t.Fatalf("geocode calls = %d, want 2", geocodeCalls)
	}

	_, err = p.GetDistance(context.Background(), "Chicago, IL", "Atlantis")
	if !errors.Is(err, ports.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestORSDistanceProviderRejectsEmptyKey(t *testing.T) {
	if _, err := NewORSDistanceProvider("", nil, nil); err == nil {
		t.Fatal("expected error for empty api key")
	}
}

func TestNominatimGeocoder(t *testing.T) {
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		if r.URL.Path != "/search" {
			t.Errorf("path = %s, want /search", r.URL.Path)
		}
		if r.Header.Get("User-Agent") != "test-agent" {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		if r.URL.Query().Get("q") == "Denver, CO" {
			return jsonResponse(200, `[{"lat":"39.7392","lon":"-104.9903"}]`), nil
		}
		return jsonResponse(200, `[]`), nil
	})}

	g := NewNominatimGeocoder("http://nominatim.local/", "test-agent", client)

	c, err := g.Geocode(context.Background(), "Denver,  CO")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Lat != 39.7392 || c.Lon != -104.9903 {
		t.Fatalf("coords = %+v", c)
	}

	if _, err := g.Geocode(context.Background(), "Nowhere"); !errors.Is(err, ports.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

type mapGeocoder map[string]domain.Coordinates

func (m mapGeocoder) Geocode(_ context.Context, address string) (domain.Coordinates, error) {
	c, ok := m[address]
	if !ok {
		return domain.Coordinates{}, ports.ErrLocationNotFound
	}
	return c, nil
}

func TestGeodesicDistanceProvider(t *testing.T) {
	geo := mapGeocoder{
		"A": {Lon: 0, Lat: 0},
		"B": {Lon: 1, Lat: 0},
	}

	p, err := NewGeodesicDistanceProvider(geo, 0)
	if err != nil {
		t.Fatalf("NewGeodesicDistanceProvider: %v", err)
	}

	r, err := p.GetDistance(context.Background(), "A", "B")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One degree of longitude on the equator at 60 mph.
	if r.DistanceMeters != 111195 {
		t.Fatalf("meters = %d, want 111195", r.DistanceMeters)
	}
	if r.DurationSeconds != 4146 {
		t.Fatalf("seconds = %d, want 4146", r.DurationSeconds)
	}

	if _, err := p.GetDistance(context.Background(), "A", "C"); !errors.Is(err, ports.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestGeodesicDistanceProviderShortHops(t *testing.T) {
	geo := mapGeocoder{
		"Depot":      {Lon: -87.6298, Lat: 41.8781},
		"Depot Gate": {Lon: -87.6298, Lat: 41.87815},
		"Same Spot":  {Lon: -87.6298, Lat: 41.8781},
	}

	p, err := NewGeodesicDistanceProvider(geo, 0)
	if err != nil {
		t.Fatalf("NewGeodesicDistanceProvider: %v", err)
	}

	// About 5.6 m apart: less than a second of driving at 60 mph.
	r, err := p.GetDistance(context.Background(), "Depot", "Depot Gate")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DistanceMeters != 6 || r.DurationSeconds != 1 {
		t.Fatalf("result = %+v, want 6 m in 1 s", r)
	}

	r, err = p.GetDistance(context.Background(), "Depot", "Same Spot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.DistanceMeters != 0 || r.DurationSeconds != 0 {
		t.Fatalf("result = %+v, want zero", r)
	}
}

type memoryDistanceCache struct {
	m map[string]ports.DistanceResult
}

func (c *memoryDistanceCache) Get(_ context.Context, o, d string) (ports.DistanceResult, bool, error) {
	r, ok := c.m[o+"|"+d]
	return r, ok, nil
}

func (c *memoryDistanceCache) Put(_ context.Context, o, d string, r ports.DistanceResult) error {
	c.m[o+"|"+d] = r
	return nil
}

type memoryGeocodeCache struct {
	m map[string]domain.Coordinates
}

func (c *memoryGeocodeCache) GetMany(_ context.Context, addresses []string) (map[string]domain.Coordinates, error) {
	out := make(map[string]domain.Coordinates)
	for _, a := range addresses {
		if v, ok := c.m[a]; ok {
			out[a] = v
		}
	}
	return out, nil
}

func (c *memoryGeocodeCache) PutMany(_ context.Context, results map[string]domain.Coordinates) error {
	for k, v := range results {
		c.m[k] = v
	}
	return nil
}

func TestCachingDistanceProvider(t *testing.T) {
	mock := NewMockDistanceProvider([]MockPair{
		MilesPair("Reno, NV", "Boise, ID", 420, 6.5),
	})
	cache := &memoryDistanceCache{m: map[string]ports.DistanceResult{}}
	p := NewCachingDistanceProvider(mock, cache)

	for i := 0; i < 3; i++ {
		r, err := p.GetDistance(context.Background(), "Reno,  NV", "Boise, ID")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if r.DurationSeconds != 23400 {
			t.Fatalf("seconds = %d, want 23400", r.DurationSeconds)
		}
	}

	if mock.Calls() != 1 {
		t.Fatalf("provider calls = %d, want 1", mock.Calls())
	}

	if _, err := p.GetDistance(context.Background(), "Reno, NV", "Nowhere"); !errors.Is(err, ports.ErrLocationNotFound) {
		t.Fatalf("err = %v, want ErrLocationNotFound", err)
	}
}

func TestCachingGeocoder(t *testing.T) {
	calls := 0
	inner := geocoderFunc(func(_ context.Context, address string) (domain.Coordinates, error) {
		calls++
		return domain.Coordinates{Lon: -1, Lat: 1}, nil
	})
	g := NewCachingGeocoder(inner, &memoryGeocodeCache{m: map[string]domain.Coordinates{}})

	for i := 0; i < 2; i++ {
		if _, err := g.Geocode(context.Background(), " Salt Lake City,   UT"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("inner calls = %d, want 1", calls)
	}
}

type geocoderFunc func(context.Context, string) (domain.Coordinates, error)

func (f geocoderFunc) Geocode(ctx context.Context, address string) (domain.Coordinates, error) {
	return f(ctx, address)
}
