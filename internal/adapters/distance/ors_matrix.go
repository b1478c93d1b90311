package distance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/ports"
	"math"
	"net/http"
)

type matrixRequest struct {
	Locations    [][]float64 `json:"locations"`
	Destinations []int       `json:"destinations"`
	Metrics      []string    `json:"metrics"`
	Sources      []int       `json:"sources"`
}

type matrixResponse struct {
	Distances [][]*float64 `json:"distances"`
	Durations [][]*float64 `json:"durations"`
}

// fetchMatrixCell retrieves driving distance and duration between two points
// using the OpenRouteService matrix endpoint.
func (o *ORSDistanceProvider) fetchMatrixCell(
	ctx context.Context,
	originCoord domain.Coordinates,
	destinationCoord domain.Coordinates,
) (ports.DistanceResult, error) {
	endpoint := fmt.Sprintf("%s/v2/matrix/%s", o.baseURL, o.profile)

	payload, err := json.Marshal(matrixRequest{
		Locations:    [][]float64{originCoord.CoordsToList(), destinationCoord.CoordsToList()},
		Destinations: []int{1},
		Metrics:      []string{"distance", "duration"},
		Sources:      []int{0},
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("marshal matrix request: %w", err)
	}

	resp, err := o.client.doWithRetry(ctx, func() (*http.Request, error) {
		return o.newRequest(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	})
	if err != nil {
		return ports.DistanceResult{}, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	var mr matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&mr); err != nil {
		return ports.DistanceResult{}, fmt.Errorf("decode matrix response: %w", err)
	}

	if len(mr.Distances) != 1 || len(mr.Durations) != 1 ||
		len(mr.Distances[0]) != 1 || len(mr.Durations[0]) != 1 {
		return ports.DistanceResult{}, fmt.Errorf(
			"expected a 1x1 matrix; got distances=%d durations=%d rows",
			len(mr.Distances), len(mr.Durations),
		)
	}

	meters, seconds := mr.Distances[0][0], mr.Durations[0][0]
	if meters == nil || seconds == nil {
		// ORS returns null when no route connects the points.
		return ports.DistanceResult{}, fmt.Errorf("no drivable route: %w", ports.ErrLocationNotFound)
	}

	// ORS returns float metrics; round to nearest integer for domain consistency.
	return ports.DistanceResult{
		DistanceMeters:  int(math.Round(*meters)),
		DurationSeconds: int(math.Round(*seconds)),
	}, nil
}
