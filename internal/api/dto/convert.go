package dto

import (
	"hos-trip-service/internal/domain"
	"time"
)

// The converters render every timestamp in loc.

func NewRouteResponse(p *domain.RoutePlan, loc *time.Location) RouteResponse {
	return RouteResponse{
		TotalDistance:         p.TotalMiles,
		EstimatedDrivingHours: p.EstimatedDrivingHours,
		RestStops:             p.RestStops,
		FuelStopsNeeded:       p.FuelStops,
		RoutePoints:           newRoutePoints(p.Points, loc),
	}
}

func newRoutePoints(points []domain.Waypoint, loc *time.Location) []RoutePointResponse {
	out := make([]RoutePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, RoutePointResponse{
			Sequence:             p.Sequence,
			Location:             p.Location,
			LocationType:         string(p.Type),
			DurationHours:        p.DurationHours,
			DistanceFromPrevious: p.DistanceFromPrevious,
			ArriveAt:             p.ArriveAt.In(loc),
		})
	}
	return out
}

// NewTripResponse converts a trip. Route and sheets are included when the record carries them.
func NewTripResponse(r *domain.TripRecord, loc *time.Location) TripResponse {
	res := TripResponse{
		ID:                    r.ID.String(),
		CurrentLocation:       r.Input.CurrentLocation,
		PickupLocation:        r.Input.PickupLocation,
		DropoffLocation:       r.Input.DropoffLocation,
		CurrentCycleHours:     r.Input.CurrentCycleHours,
		DriverName:            r.Input.DriverName,
		VehicleID:             r.Input.VehicleID,
		TotalDistance:         r.TotalMiles,
		EstimatedDrivingHours: r.EstimatedDrivingHours,
		StartAt:               r.StartAt.In(loc),
		EndAt:                 r.EndAt.In(loc),
		CreatedAt:             r.CreatedAt.In(loc),
	}

	if len(r.Route) > 0 {
		res.RoutePoints = newRoutePoints(r.Route, loc)
	}
	for i := range r.LogSheets {
		res.LogSheets = append(res.LogSheets, NewLogSheetResponse(&r.LogSheets[i], loc))
	}

	return res
}

// NewLogSheetResponse converts a sheet. The date is the sheet's calendar day as stored.
func NewLogSheetResponse(s *domain.LogSheetRecord, loc *time.Location) LogSheetResponse {
	entries := make([]LogEntryResponse, 0, len(s.Entries))
	for _, e := range s.Entries {
		entries = append(entries, LogEntryResponse{
			Time:     e.Time.In(loc),
			Status:   string(e.Status),
			Location: e.Location,
			Remarks:  e.Remarks,
		})
	}

	return LogSheetResponse{
		ID:                  s.ID.String(),
		TripID:              s.TripID.String(),
		Date:                s.Date.Format(time.DateOnly),
		DriverName:          s.DriverName,
		VehicleID:           s.VehicleID,
		DrivingHours:        s.DrivingHours,
		OnDutyHours:         s.OnDutyHours,
		OffDutyHours:        s.OffDutyHours,
		SleeperHours:        s.SleeperHours,
		CycleHoursUsed:      s.CycleHoursUsed,
		CycleHoursRemaining: s.CycleHoursRemaining,
		TotalDistance:       s.TotalMiles,
		FuelStops:           s.FuelStops,
		RestStops:           s.RestStops,
		Entries:             entries,
	}
}
