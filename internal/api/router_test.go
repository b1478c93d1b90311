package api

import (
	"context"
	"encoding/json"
	"errors"
	"hos-trip-service/internal/adapters/distance"
	"hos-trip-service/internal/adapters/repositories"
	"hos-trip-service/internal/api/dto"
	"hos-trip-service/internal/api/handlers"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/db"
	"hos-trip-service/internal/ports"
	"hos-trip-service/internal/services"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type recordingPublisher struct {
	events []domain.TripScheduledEvent
}

func (p *recordingPublisher) PublishTripScheduled(_ context.Context, e domain.TripScheduledEvent) error {
	p.events = append(p.events, e)
	return nil
}

type failingProvider struct{}

func (failingProvider) GetDistance(context.Context, string, string) (ports.DistanceResult, error) {
	return ports.DistanceResult{}, errors.New("upstream unavailable")
}

func newTestRouter(t *testing.T, provider ports.DistanceProvider) (http.Handler, *recordingPublisher) {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := repositories.InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	if provider == nil {
		provider = distance.NewMockDistanceProvider([]distance.MockPair{
			distance.MilesPair("Chicago, IL", "Denver, CO", 1500, 15),
		})
	}

	pub := &recordingPublisher{}
	h := &handlers.TripHandler{
		Repo:              repositories.NewSQLTripRepository(conn),
		Provider:          provider,
		Publisher:         pub,
		Rules:             services.DefaultRules(),
		Location:          time.UTC,
		DefaultDriverName: "Driver",
		DefaultVehicleID:  "Truck-001",
		Now:               func() time.Time { return time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC) },
	}
	return NewRouter(h), pub
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealthSetsRequestID(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if _, err := uuid.Parse(rec.Header().Get("X-Request-ID")); err != nil {
		t.Fatalf("X-Request-ID = %q, want a uuid", rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "client-42")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "client-42" {
		t.Fatalf("X-Request-ID = %q, want client-42", got)
	}

	if rec := do(t, h, http.MethodPost, "/health", "{}"); rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health status = %d, want 405", rec.Code)
	}
}

func TestCreateAndFetchTrip(t *testing.T) {
	h, pub := newTestRouter(t, nil)

	rec := do(t, h, http.MethodPost, "/trips", `{
		"pickup_location": "Chicago, IL",
		"dropoff_location": "Denver, CO",
		"current_cycle_hours": 5.5,
		"start_at": "2026-03-02T12:30:00Z",
		"vehicle_id": "Truck-7"
	}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body %s, want 201", rec.Code, rec.Body)
	}

	var created dto.CreateTripResponse
	decode(t, rec, &created)

	if created.RouteData.RestStops != 2 || created.RouteData.FuelStopsNeeded != 1 || len(created.RouteData.RoutePoints) != 5 {
		t.Fatalf("route data = %+v", created.RouteData)
	}
	if len(created.Trip.LogSheets) != 2 {
		t.Fatalf("log sheets = %d, want 2", len(created.Trip.LogSheets))
	}
	if created.Trip.DriverName != "Driver" || created.Trip.VehicleID != "Truck-7" {
		t.Fatalf("driver/vehicle = %q/%q", created.Trip.DriverName, created.Trip.VehicleID)
	}
	if created.Message == "" {
		t.Fatalf("message is empty")
	}

	if len(pub.events) != 1 || pub.events[0].TripID.String() != created.Trip.ID || len(pub.events[0].LogSheetIDs) != 2 {
		t.Fatalf("published events = %+v", pub.events)
	}

	rec = do(t, h, http.MethodGet, "/trips/"+created.Trip.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get trip status = %d, want 200", rec.Code)
	}
	var got dto.TripResponse
	decode(t, rec, &got)
	if len(got.RoutePoints) != 5 || len(got.LogSheets) != 2 {
		t.Fatalf("trip = %d points %d sheets", len(got.RoutePoints), len(got.LogSheets))
	}
	if !got.EndAt.Equal(time.Date(2026, 3, 3, 16, 30, 0, 0, time.UTC)) {
		t.Fatalf("end_at = %s", got.EndAt)
	}

	rec = do(t, h, http.MethodGet, "/log-sheets/"+got.LogSheets[1].ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get log sheet status = %d, want 200", rec.Code)
	}
	var sheet dto.LogSheetResponse
	decode(t, rec, &sheet)
	if sheet.Date != "2026-03-03" || sheet.TripID != created.Trip.ID || sheet.SleeperHours != 10 {
		t.Fatalf("sheet = %+v", sheet)
	}

	rec = do(t, h, http.MethodGet, "/trips", "")
	var list dto.ListTripsResponse
	decode(t, rec, &list)
	if len(list.Trips) != 1 || list.Trips[0].ID != created.Trip.ID || list.Trips[0].LogSheets != nil {
		t.Fatalf("list = %+v", list)
	}
}

func TestCalculateRoute(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/calculate-route?pickup_location=Chicago,+IL&dropoff_location=Denver,+CO&current_cycle_hours=5.5", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body %s, want 200", rec.Code, rec.Body)
	}

	var route dto.RouteResponse
	decode(t, rec, &route)
	if route.TotalDistance < 1499.99 || route.TotalDistance > 1500.01 || route.EstimatedDrivingHours != 15 {
		t.Fatalf("route = %+v", route)
	}
	if route.RoutePoints[0].LocationType != "pickup" || route.RoutePoints[4].LocationType != "dropoff" {
		t.Fatalf("route points = %+v", route.RoutePoints)
	}
}

func TestErrorStatuses(t *testing.T) {
	h, _ := newTestRouter(t, nil)
	down, _ := newTestRouter(t, failingProvider{})

	tests := []struct {
		name    string
		handler http.Handler
		method  string
		target  string
		body    string
		want    int
	}{
		{"missing pickup", h, http.MethodPost, "/trips", `{"dropoff_location": "Denver, CO"}`, http.StatusBadRequest},
		{"cycle hours above limit", h, http.MethodPost, "/trips", `{"pickup_location": "Chicago, IL", "dropoff_location": "Denver, CO", "current_cycle_hours": 71}`, http.StatusBadRequest},
		{"unknown field", h, http.MethodPost, "/trips", `{"pickup": "Chicago, IL"}`, http.StatusBadRequest},
		{"two objects", h, http.MethodPost, "/trips", `{} {}`, http.StatusBadRequest},
		{"unknown location", h, http.MethodPost, "/trips", `{"pickup_location": "Chicago, IL", "dropoff_location": "Atlantis"}`, http.StatusUnprocessableEntity},
		{"no cycle hours left", h, http.MethodPost, "/trips", `{"pickup_location": "Chicago, IL", "dropoff_location": "Denver, CO", "current_cycle_hours": 70}`, http.StatusUnprocessableEntity},
		{"provider down", down, http.MethodPost, "/trips", `{"pickup_location": "Chicago, IL", "dropoff_location": "Denver, CO"}`, http.StatusBadGateway},
		{"unparsable cycle hours", h, http.MethodGet, "/calculate-route?pickup_location=Chicago,+IL&dropoff_location=Denver,+CO&current_cycle_hours=abc", "", http.StatusBadRequest},
		{"unparsable start", h, http.MethodGet, "/calculate-route?pickup_location=Chicago,+IL&dropoff_location=Denver,+CO&start_at=tomorrow", "", http.StatusBadRequest},
		{"trip not found", h, http.MethodGet, "/trips/" + uuid.NewString(), "", http.StatusNotFound},
		{"log sheet not found", h, http.MethodGet, "/log-sheets/" + uuid.NewString(), "", http.StatusNotFound},
		{"malformed id", h, http.MethodGet, "/trips/42", "", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, tt.handler, tt.method, tt.target, tt.body)
			if rec.Code != tt.want {
				t.Fatalf("status = %d body %s, want %d", rec.Code, rec.Body, tt.want)
			}

			var body map[string]string
			decode(t, rec, &body)
			if body["error"] == "" {
				t.Fatalf("error body = %v", body)
			}
		})
	}
}

func hasKeys(t *testing.T, what string, obj map[string]any, keys ...string) {
	t.Helper()
	for _, k := range keys {
		if _, ok := obj[k]; !ok {
			t.Fatalf("%s is missing %q: %v", what, k, obj)
		}
	}
}

func TestResponseFieldNames(t *testing.T) {
	h, _ := newTestRouter(t, nil)

	rec := do(t, h, http.MethodGet, "/calculate-route?pickup_location=Chicago,+IL&dropoff_location=Denver,+CO", "")
	var route map[string]any
	decode(t, rec, &route)
	hasKeys(t, "route", route,
		"total_distance", "estimated_driving_hours", "rest_stops", "fuel_stops_needed", "route_points")

	points, _ := route["route_points"].([]any)
	if len(points) == 0 {
		t.Fatalf("route_points = %v", route["route_points"])
	}
	point, _ := points[0].(map[string]any)
	hasKeys(t, "route point", point, "sequence", "location", "location_type", "duration_hours")

	for _, path := range []string{"/trips", "/trips/create/", "/trips/create"} {
		rec = do(t, h, http.MethodPost, path, `{"pickup_location": "Chicago, IL", "dropoff_location": "Denver, CO", "current_cycle_hours": 5.5}`)
		if rec.Code != http.StatusCreated {
			t.Fatalf("POST %s status = %d body %s, want 201", path, rec.Code, rec.Body)
		}

		var created map[string]any
		decode(t, rec, &created)
		hasKeys(t, "create response", created, "trip", "route_data", "message")

		routeData, _ := created["route_data"].(map[string]any)
		hasKeys(t, "route_data", routeData, "total_distance", "fuel_stops_needed")

		trip, _ := created["trip"].(map[string]any)
		hasKeys(t, "trip", trip, "id", "total_distance", "log_sheets")

		sheets, _ := trip["log_sheets"].([]any)
		if len(sheets) != 2 {
			t.Fatalf("log_sheets = %v", trip["log_sheets"])
		}
		sheet, _ := sheets[0].(map[string]any)
		hasKeys(t, "log sheet", sheet,
			"date", "driving_hours", "on_duty_hours", "off_duty_hours", "sleeper_hours",
			"cycle_hours_used", "cycle_hours_remaining", "fuel_stops", "rest_stops", "total_distance", "entries")

		entries, _ := sheet["entries"].([]any)
		if len(entries) == 0 {
			t.Fatalf("entries = %v", sheet["entries"])
		}
		entry, _ := entries[0].(map[string]any)
		hasKeys(t, "log entry", entry, "time", "status", "location", "remarks")
	}
}
