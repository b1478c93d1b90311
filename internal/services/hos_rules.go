package services

import (
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"math"
	"time"
)

// Rules holds the Hours-of-Service limits for a property-carrying driver on the
// 70-hour/8-day cycle, plus the trip handling allowances the scheduler inserts.
type Rules struct {
	MaxDriving        time.Duration
	DutyWindow        time.Duration
	BreakAfter        time.Duration
	BreakDuration     time.Duration
	DailyReset        time.Duration
	ResetStatus       domain.DutyStatus
	CycleLimit        time.Duration
	CycleRestart      time.Duration
	FuelIntervalMiles float64
	FuelStopDuration  time.Duration
	PickupDuration    time.Duration
	DropoffDuration   time.Duration
}

// DefaultRules returns the standard 11/14/70 ruleset with 1 hour pickup and
// dropoff allowances and a 30 minute fuel stop every 1000 miles.
func DefaultRules() Rules {
	return Rules{
		MaxDriving:        11 * time.Hour,
		DutyWindow:        14 * time.Hour,
		BreakAfter:        8 * time.Hour,
		BreakDuration:     30 * time.Minute,
		DailyReset:        10 * time.Hour,
		ResetStatus:       domain.StatusSleeper,
		CycleLimit:        70 * time.Hour,
		CycleRestart:      34 * time.Hour,
		FuelIntervalMiles: 1000,
		FuelStopDuration:  30 * time.Minute,
		PickupDuration:    time.Hour,
		DropoffDuration:   time.Hour,
	}
}

// Validate checks that the limits are positive and ordered so the scheduler can make progress.
func (r Rules) Validate() error {
	positive := []struct {
		name string
		d    time.Duration
	}{
		{"max driving", r.MaxDriving},
		{"duty window", r.DutyWindow},
		{"break after", r.BreakAfter},
		{"break duration", r.BreakDuration},
		{"daily reset", r.DailyReset},
		{"cycle limit", r.CycleLimit},
		{"cycle restart", r.CycleRestart},
	}
	for _, p := range positive {
		if p.d <= 0 {
			return fmt.Errorf("hos rules: %s must be positive, got %s", p.name, p.d)
		}
	}

	if r.PickupDuration < 0 || r.DropoffDuration < 0 || r.FuelStopDuration < 0 {
		return errors.New("hos rules: handling and fuel durations must not be negative")
	}
	if math.IsNaN(r.FuelIntervalMiles) || r.FuelIntervalMiles <= 0 {
		return fmt.Errorf("hos rules: fuel interval must be positive, got %v", r.FuelIntervalMiles)
	}
	if !r.ResetStatus.IsRest() {
		return fmt.Errorf("hos rules: reset status must be off_duty or sleeper, got %q", r.ResetStatus)
	}
	if r.BreakDuration >= r.DailyReset || r.DailyReset > r.CycleRestart {
		return errors.New("hos rules: expected break < daily reset <= cycle restart")
	}
	if r.MaxDriving > r.DutyWindow {
		return errors.New("hos rules: max driving must fit in the duty window")
	}
	if max(r.PickupDuration, r.DropoffDuration, r.FuelStopDuration) > r.DutyWindow {
		return errors.New("hos rules: handling and fuel durations must fit in the duty window")
	}

	return nil
}

// hoursToDuration converts fractional hours to a Duration, rounded to the nanosecond.
func hoursToDuration(h float64) time.Duration {
	return time.Duration(math.Round(h * float64(time.Hour)))
}
