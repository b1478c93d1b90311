package domain

import "time"

// LogEntry records a duty-status change on a log sheet.
type LogEntry struct {
	Time     time.Time
	Status   DutyStatus
	Location string
	Remarks  string
}

// LogSheet is one calendar day of a trip. The four status totals of a day
// fully covered by the trip add up to the length of that day.
type LogSheet struct {
	Date                time.Time
	DriverName          string
	VehicleID           string
	DrivingHours        float64
	OnDutyHours         float64
	OffDutyHours        float64
	SleeperHours        float64
	CycleHoursUsed      float64
	CycleHoursRemaining float64
	TotalMiles          float64
	FuelStops           int
	RestStops           int
	Entries             []LogEntry
}

// TotalHours is the sum of the four duty-status totals.
func (s LogSheet) TotalHours() float64 {
	return s.DrivingHours + s.OnDutyHours + s.OffDutyHours + s.SleeperHours
}
