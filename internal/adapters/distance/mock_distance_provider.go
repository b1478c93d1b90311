package distance

import (
	"context"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"math"
	"sync/atomic"
)

type MockPair struct {
	From, To string
	Meters   int
	Seconds  int
}

// MilesPair describes a pair in miles and driving hours.
func MilesPair(from, to string, miles, hours float64) MockPair {
	return MockPair{
		From:    from,
		To:      to,
		Meters:  int(math.Round(miles * domain.MetersPerMile)),
		Seconds: int(math.Round(hours * 3600)),
	}
}

// MockDistanceProvider serves fixed results keyed by origin and destination.
// Unknown pairs fail with ports.ErrLocationNotFound.
type MockDistanceProvider struct {
	m     map[string]ports.DistanceResult
	calls atomic.Int64
}

func NewMockDistanceProvider(pairs []MockPair) *MockDistanceProvider {
	m := make(map[string]ports.DistanceResult, len(pairs))
	for _, p := range pairs {
		m[p.From+"|"+p.To] = ports.DistanceResult{DistanceMeters: p.Meters, DurationSeconds: p.Seconds}
	}
	return &MockDistanceProvider{m: m}
}

func (p *MockDistanceProvider) GetDistance(ctx context.Context, origin, destination string) (ports.DistanceResult, error) {
	p.calls.Add(1)

	r, ok := p.m[origin+"|"+destination]
	if !ok {
		return ports.DistanceResult{}, fmt.Errorf("missing pair %q -> %q: %w", origin, destination, ports.ErrLocationNotFound)
	}

	return r, nil
}

// Calls reports how many lookups the provider has served, hits and misses alike.
func (p *MockDistanceProvider) Calls() int { return int(p.calls.Load()) }
