package domain

import "time"

// DutyStatus is one of the four ELD duty statuses. Values match the wire names.
type DutyStatus string

const (
	StatusDriving DutyStatus = "driving"
	StatusOnDuty  DutyStatus = "on_duty"
	StatusOffDuty DutyStatus = "off_duty"
	StatusSleeper DutyStatus = "sleeper"
)

// IsOnDuty reports whether time in this status counts toward the 14-hour window
// and the 70-hour cycle.
func (s DutyStatus) IsOnDuty() bool {
	return s == StatusDriving || s == StatusOnDuty
}

// IsRest reports whether time in this status counts toward a qualifying rest period.
func (s DutyStatus) IsRest() bool {
	return s == StatusOffDuty || s == StatusSleeper
}

// StopKind distinguishes intervals the scheduler inserted from intervals of the trip itself.
type StopKind string

const (
	StopNone    StopKind = ""
	StopPickup  StopKind = "pickup"
	StopDropoff StopKind = "dropoff"
	StopBreak   StopKind = "break"
	StopReset   StopKind = "reset"
	StopRestart StopKind = "restart"
	StopFuel    StopKind = "fuel"
)

// IsRestStop reports whether the stop is a break, a daily reset or a cycle restart.
func (k StopKind) IsRestStop() bool {
	return k == StopBreak || k == StopReset || k == StopRestart
}

// DutyInterval is a half-open [Start, End) span in a single duty status.
// Intervals of one trip are contiguous: End of interval i equals Start of i+1.
type DutyInterval struct {
	Status   DutyStatus
	Start    time.Time
	End      time.Time
	Location string
	Remarks  string
	Stop     StopKind
	Miles    float64
}

func (d DutyInterval) Duration() time.Duration { return d.End.Sub(d.Start) }

// Schedule is the scheduler output: the interval sequence, the stops along the
// route in order, and counts of the stops the scheduler inserted.
type Schedule struct {
	Intervals     []DutyInterval
	Stops         []Waypoint
	Breaks        int
	Resets        int
	Restarts      int
	FuelStops     int
	StartingCycle time.Duration
}

// RestStops counts every inserted rest period (breaks, daily resets and cycle restarts).
func (s *Schedule) RestStops() int { return s.Breaks + s.Resets + s.Restarts }

// Start returns the start of the first interval, or the zero time for an empty schedule.
func (s *Schedule) Start() time.Time {
	if len(s.Intervals) == 0 {
		return time.Time{}
	}
	return s.Intervals[0].Start
}

// End returns the end of the last interval, or the zero time for an empty schedule.
func (s *Schedule) End() time.Time {
	if len(s.Intervals) == 0 {
		return time.Time{}
	}
	return s.Intervals[len(s.Intervals)-1].End
}
