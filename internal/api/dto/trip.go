package dto

import "time"

// CreateTripRequest is the body of POST /trips. StartAt defaults to the
// current time; DriverName and VehicleID default to the configured values.
type CreateTripRequest struct {
	CurrentLocation   string     `json:"current_location"`
	PickupLocation    string     `json:"pickup_location"`
	DropoffLocation   string     `json:"dropoff_location"`
	CurrentCycleHours float64    `json:"current_cycle_hours"`
	StartAt           *time.Time `json:"start_at"`
	DriverName        string     `json:"driver_name"`
	VehicleID         string     `json:"vehicle_id"`
}

type RoutePointResponse struct {
	Sequence             int       `json:"sequence"`
	Location             string    `json:"location"`
	LocationType         string    `json:"location_type"`
	DurationHours        float64   `json:"duration_hours"`
	DistanceFromPrevious float64   `json:"distance_from_previous"`
	ArriveAt             time.Time `json:"arrive_at"`
}

type RouteResponse struct {
	TotalDistance         float64              `json:"total_distance"`
	EstimatedDrivingHours float64              `json:"estimated_driving_hours"`
	RestStops             int                  `json:"rest_stops"`
	FuelStopsNeeded       int                  `json:"fuel_stops_needed"`
	RoutePoints           []RoutePointResponse `json:"route_points"`
}

type LogEntryResponse struct {
	Time     time.Time `json:"time"`
	Status   string    `json:"status"`
	Location string    `json:"location"`
	Remarks  string    `json:"remarks"`
}

type LogSheetResponse struct {
	ID                  string             `json:"id"`
	TripID              string             `json:"trip_id"`
	Date                string             `json:"date"`
	DriverName          string             `json:"driver_name"`
	VehicleID           string             `json:"vehicle_id"`
	DrivingHours        float64            `json:"driving_hours"`
	OnDutyHours         float64            `json:"on_duty_hours"`
	OffDutyHours        float64            `json:"off_duty_hours"`
	SleeperHours        float64            `json:"sleeper_hours"`
	CycleHoursUsed      float64            `json:"cycle_hours_used"`
	CycleHoursRemaining float64            `json:"cycle_hours_remaining"`
	TotalDistance       float64            `json:"total_distance"`
	FuelStops           int                `json:"fuel_stops"`
	RestStops           int                `json:"rest_stops"`
	Entries             []LogEntryResponse `json:"entries"`
}

// TripResponse omits route points and log sheets in list responses.
type TripResponse struct {
	ID                    string               `json:"id"`
	CurrentLocation       string               `json:"current_location"`
	PickupLocation        string               `json:"pickup_location"`
	DropoffLocation       string               `json:"dropoff_location"`
	CurrentCycleHours     float64              `json:"current_cycle_hours"`
	DriverName            string               `json:"driver_name"`
	VehicleID             string               `json:"vehicle_id"`
	TotalDistance         float64              `json:"total_distance"`
	EstimatedDrivingHours float64              `json:"estimated_driving_hours"`
	StartAt               time.Time            `json:"start_at"`
	EndAt                 time.Time            `json:"end_at"`
	CreatedAt             time.Time            `json:"created_at"`
	RoutePoints           []RoutePointResponse `json:"route_points,omitempty"`
	LogSheets             []LogSheetResponse   `json:"log_sheets,omitempty"`
}

type CreateTripResponse struct {
	Trip      TripResponse  `json:"trip"`
	RouteData RouteResponse `json:"route_data"`
	Message   string        `json:"message"`
}

type ListTripsResponse struct {
	Trips []TripResponse `json:"trips"`
}
