package repositories

import (
	"context"
	"errors"
	"hos-trip-service/internal/domain"
	"hos-trip-service/internal/platform/db"
	"hos-trip-service/internal/ports"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

func openTestDB(t *testing.T) *db.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := InitSchema(conn); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return conn
}

func sampleTrip(start time.Time) *domain.TripRecord {
	day := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, start.Location())
	return &domain.TripRecord{
		Input: domain.TripInput{
			CurrentLocation:   "Chicago, IL",
			PickupLocation:    "Chicago, IL",
			DropoffLocation:   "Dallas, TX",
			CurrentCycleHours: 12.5,
			StartAt:           start,
			DriverName:        "Jane Doe",
			VehicleID:         "Truck-001",
		},
		TotalMiles:            925,
		EstimatedDrivingHours: 15.4,
		StartAt:               start,
		EndAt:                 start.Add(28 * time.Hour),
		Route: []domain.Waypoint{
			{Sequence: 1, Location: "Chicago, IL", Type: domain.LocationPickup, DurationHours: 1, ArriveAt: start},
			{Sequence: 2, Location: "Rest Stop 1", Type: domain.LocationRest, DurationHours: 0.5, DistanceFromPrevious: 480, ArriveAt: start.Add(9 * time.Hour)},
		},
		LogSheets: []domain.LogSheetRecord{
			{LogSheet: domain.LogSheet{
				Date:           day,
				DriverName:     "Jane Doe",
				VehicleID:      "Truck-001",
				DrivingHours:   8,
				OnDutyHours:    1,
				OffDutyHours:   0.5,
				CycleHoursUsed: 12.5,
				RestStops:      1,
				Entries: []domain.LogEntry{
					{Time: start, Status: domain.StatusOnDuty, Location: "Chicago, IL", Remarks: "Pickup: loading"},
					{Time: start.Add(time.Hour), Status: domain.StatusDriving, Location: "Chicago, IL", Remarks: "Driving Chicago, IL to Dallas, TX"},
				},
			}},
			{LogSheet: domain.LogSheet{Date: day.AddDate(0, 0, 1), DriverName: "Jane Doe", VehicleID: "Truck-001"}},
		},
	}
}

func TestSQLTripRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTripRepository(openTestDB(t))

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.FixedZone("CST", -6*3600))
	trip := sampleTrip(start)

	if err := repo.SaveTrip(ctx, trip); err != nil {
		t.Fatalf("SaveTrip: %v", err)
	}
	if trip.ID == uuid.Nil {
		t.Fatal("SaveTrip should assign a trip id")
	}
	for i, ls := range trip.LogSheets {
		if ls.ID == uuid.Nil || ls.TripID != trip.ID {
			t.Fatalf("sheet %d ids = %s/%s", i, ls.ID, ls.TripID)
		}
	}

	got, err := repo.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip: %v", err)
	}

	if got.Input.PickupLocation != "Chicago, IL" || got.Input.DropoffLocation != "Dallas, TX" ||
		got.Input.CurrentCycleHours != 12.5 || got.Input.DriverName != "Jane Doe" || got.Input.VehicleID != "Truck-001" {
		t.Fatalf("input = %+v, want %+v", got.Input, trip.Input)
	}
	if !got.StartAt.Equal(start) || !got.EndAt.Equal(trip.EndAt) {
		t.Fatalf("times = %s..%s", got.StartAt, got.EndAt)
	}
	if _, off := got.StartAt.Zone(); off != -6*3600 {
		t.Fatalf("start offset = %d, want -21600", off)
	}
	if len(got.Route) != 2 || got.Route[1].Location != "Rest Stop 1" || got.Route[1].DistanceFromPrevious != 480 {
		t.Fatalf("route = %+v", got.Route)
	}
	if len(got.LogSheets) != 2 {
		t.Fatalf("sheets = %d, want 2", len(got.LogSheets))
	}
	if e := got.LogSheets[0].Entries; len(e) != 2 || e[1].Status != domain.StatusDriving {
		t.Fatalf("entries = %+v", e)
	}
	if got.LogSheets[0].Date.Format("2006-01-02") != "2026-03-02" {
		t.Fatalf("sheet date = %s", got.LogSheets[0].Date)
	}

	sheet, err := repo.GetLogSheet(ctx, trip.LogSheets[0].ID)
	if err != nil {
		t.Fatalf("GetLogSheet: %v", err)
	}
	if sheet.TripID != trip.ID || sheet.DrivingHours != 8 || sheet.RestStops != 1 || len(sheet.Entries) != 2 {
		t.Fatalf("sheet = %+v", sheet)
	}
}

func TestSQLTripRepositoryNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTripRepository(openTestDB(t))

	if _, err := repo.GetTrip(ctx, uuid.New()); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetTrip err = %v, want ErrNotFound", err)
	}
	if _, err := repo.GetLogSheet(ctx, uuid.New()); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("GetLogSheet err = %v, want ErrNotFound", err)
	}
}

func TestSQLTripRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTripRepository(openTestDB(t))

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	older := sampleTrip(start)
	older.CreatedAt = start
	newer := sampleTrip(start)
	newer.CreatedAt = start.Add(time.Minute)

	for _, tr := range []*domain.TripRecord{older, newer} {
		if err := repo.SaveTrip(ctx, tr); err != nil {
			t.Fatalf("SaveTrip: %v", err)
		}
	}

	trips, err := repo.ListTrips(ctx)
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(trips) != 2 || trips[0].ID != newer.ID || trips[1].ID != older.ID {
		t.Fatalf("order = %v", trips)
	}
}

func TestSeedDistancesFromJSON(t *testing.T) {
	conn := openTestDB(t)

	path := filepath.Join(t.TempDir(), "distances.json")
	data := `[
		{"origin": "Chicago,  IL", "destination": "Dallas, TX", "distance_meters": 1487000, "duration_seconds": 52000},
		{"origin": "Dallas, TX", "destination": "Chicago, IL", "distance_meters": 1487000, "duration_seconds": 52500}
	]`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	n, err := SeedDistancesFromJSON(conn, path)
	if err != nil {
		t.Fatalf("SeedDistancesFromJSON: %v", err)
	}
	if n != 2 {
		t.Fatalf("seeded %d rows, want 2", n)
	}

	var seconds int
	err = conn.QueryRow(`SELECT duration_seconds FROM distance_cache WHERE origin = ? AND destination = ?`, "Chicago, IL", "Dallas, TX").Scan(&seconds)
	if err != nil {
		t.Fatalf("query seeded row: %v", err)
	}
	if seconds != 52000 {
		t.Fatalf("seconds = %d, want 52000", seconds)
	}
}

func TestSQLTripRepositorySaveTripFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	repo := NewSQLTripRepository(openTestDB(t))

	trip := sampleTrip(time.Date(2026, 3, 2, 12, 30, 0, 0, time.UTC))
	dup := uuid.New()
	trip.LogSheets[0].ID = dup
	trip.LogSheets[1].ID = dup

	if err := repo.SaveTrip(ctx, trip); err == nil {
		t.Fatalf("SaveTrip with duplicate sheet ids succeeded")
	}

	if trip.ID != uuid.Nil || !trip.CreatedAt.IsZero() {
		t.Fatalf("trip id/created_at = %s/%s, want unset", trip.ID, trip.CreatedAt)
	}
	for i, ls := range trip.LogSheets {
		if ls.ID != dup || ls.TripID != uuid.Nil {
			t.Fatalf("sheet %d ids = %s/%s", i, ls.ID, ls.TripID)
		}
	}

	trips, err := repo.ListTrips(ctx)
	if err != nil {
		t.Fatalf("ListTrips: %v", err)
	}
	if len(trips) != 0 {
		t.Fatalf("trips = %d, want 0 after rollback", len(trips))
	}
}
