package domain

import (
	"time"

	"github.com/google/uuid"
)

// TripInput is the caller-supplied description of a trip to schedule.
type TripInput struct {
	CurrentLocation   string
	PickupLocation    string
	DropoffLocation   string
	CurrentCycleHours float64
	StartAt           time.Time
	DriverName        string
	VehicleID         string
}

// RoutePlan summarizes a scheduled route: the totals and the ordered stops.
type RoutePlan struct {
	TotalMiles            float64
	EstimatedDrivingHours float64
	RestStops             int
	FuelStops             int
	Points                []Waypoint
}

// TripSchedule is the complete engine output for one trip.
// It carries no identifiers; the repository assigns them when the trip is saved.
type TripSchedule struct {
	Input     TripInput
	Route     RoutePlan
	Schedule  Schedule
	LogSheets []LogSheet
}

// TripRecord is a persisted TripSchedule.
type TripRecord struct {
	ID                    uuid.UUID
	Input                 TripInput
	TotalMiles            float64
	EstimatedDrivingHours float64
	StartAt               time.Time
	EndAt                 time.Time
	CreatedAt             time.Time
	Route                 []Waypoint
	LogSheets             []LogSheetRecord
}

// LogSheetRecord is a persisted LogSheet.
type LogSheetRecord struct {
	ID     uuid.UUID
	TripID uuid.UUID
	LogSheet
}

// NewTripRecord builds an unsaved record from a schedule.
func NewTripRecord(s *TripSchedule) *TripRecord {
	sheets := make([]LogSheetRecord, 0, len(s.LogSheets))
	for _, ls := range s.LogSheets {
		sheets = append(sheets, LogSheetRecord{LogSheet: ls})
	}

	return &TripRecord{
		Input:                 s.Input,
		TotalMiles:            s.Route.TotalMiles,
		EstimatedDrivingHours: s.Route.EstimatedDrivingHours,
		StartAt:               s.Schedule.Start(),
		EndAt:                 s.Schedule.End(),
		Route:                 s.Route.Points,
		LogSheets:             sheets,
	}
}

// TripScheduledEvent is published once a trip has been saved, for downstream
// consumers such as log sheet renderers.
type TripScheduledEvent struct {
	TripID          uuid.UUID   `json:"trip_id"`
	PickupLocation  string      `json:"pickup_location"`
	DropoffLocation string      `json:"dropoff_location"`
	StartAt         time.Time   `json:"start_at"`
	EndAt           time.Time   `json:"end_at"`
	TotalMiles      float64     `json:"total_miles"`
	LogSheetIDs     []uuid.UUID `json:"log_sheet_ids"`
}

// NewTripScheduledEvent describes a saved trip.
func NewTripScheduledEvent(r *TripRecord) TripScheduledEvent {
	ids := make([]uuid.UUID, 0, len(r.LogSheets))
	for _, ls := range r.LogSheets {
		ids = append(ids, ls.ID)
	}
	return TripScheduledEvent{
		TripID:          r.ID,
		PickupLocation:  r.Input.PickupLocation,
		DropoffLocation: r.Input.DropoffLocation,
		StartAt:         r.StartAt,
		EndAt:           r.EndAt,
		TotalMiles:      r.TotalMiles,
		LogSheetIDs:     ids,
	}
}
