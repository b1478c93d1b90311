package services

import (
	"errors"
	"fmt"
	"hos-trip-service/internal/domain"
	"math"
	"strconv"
	"time"
)

// fuelSlackMiles absorbs rounding fuel stop times to whole seconds.
const fuelSlackMiles = 0.05

type scheduler struct {
	rules Rules
	clock *dutyClock
	out   *domain.Schedule

	now           time.Time
	here          string
	milesDriven   float64
	totalMiles    float64
	lastStopMiles float64
}

// ScheduleTrip applies the HOS rules to the segmented route and returns the
// chronological duty-status intervals starting at startAt.
//
// The simulation walks the legs consuming driving time. Before every driving
// chunk it inserts, in priority order, a 34-hour restart when the cycle is
// used up, a 10-hour reset when the driving limit or the duty window is used
// up, and a 30-minute break after 8 hours of driving. Fuel stops are inserted
// every FuelIntervalMiles of driving. Pickup, dropoff and fueling are on-duty
// time that must fit in the window and the cycle.
//
// The result depends only on the arguments.
func ScheduleTrip(
	seg *domain.Segmentation,
	startingCycleHours float64,
	startAt time.Time,
	rules Rules,
) (*domain.Schedule, error) {
	if seg == nil {
		return nil, errors.New("schedule trip: segmentation must be non-nil")
	}

	if math.IsNaN(startingCycleHours) || startingCycleHours < 0 || startingCycleHours > rules.CycleLimit.Hours() {
		return nil, domain.NewInvalidCycleHoursError(startingCycleHours)
	}

	startingCycle := hoursToDuration(startingCycleHours)
	if startingCycle >= rules.CycleLimit {
		return nil, &domain.UnsplittableLegError{
			LegIndex: -1,
			Reason: fmt.Sprintf(
				"no cycle hours remaining (%s of %s used)",
				formatHours(startingCycle), formatHours(rules.CycleLimit),
			),
		}
	}

	if seg.LegsBeforePickup < 0 || seg.LegsBeforePickup > len(seg.Legs) {
		return nil, fmt.Errorf("schedule trip: %d legs before pickup out of range for %d legs", seg.LegsBeforePickup, len(seg.Legs))
	}

	for i, leg := range seg.Legs {
		if err := checkLeg(i, leg); err != nil {
			return nil, err
		}
	}

	s := &scheduler{
		rules: rules,
		clock: newDutyClock(rules, startingCycle),
		out:   &domain.Schedule{StartingCycle: startingCycle},
		now:   startAt,
	}
	for _, l := range seg.Legs {
		s.totalMiles += l.Miles
	}

	if len(seg.Legs) > 0 {
		s.here = seg.Legs[0].Origin
	}

	for i := 0; i < seg.LegsBeforePickup; i++ {
		if err := s.drive(i, seg.Legs[i]); err != nil {
			return nil, err
		}
	}

	if err := s.handle(domain.StopPickup, seg.Pickup.Location, rules.PickupDuration, "Pickup: loading"); err != nil {
		return nil, err
	}

	for i := seg.LegsBeforePickup; i < len(seg.Legs); i++ {
		if err := s.drive(i, seg.Legs[i]); err != nil {
			return nil, err
		}
	}

	if err := s.handle(domain.StopDropoff, seg.Dropoff.Location, rules.DropoffDuration, "Dropoff: unloading"); err != nil {
		return nil, err
	}

	return s.out, nil
}

func checkLeg(i int, leg domain.Leg) error {
	unsplittable := func(reason string) error {
		return &domain.UnsplittableLegError{
			LegIndex:    i,
			Origin:      leg.Origin,
			Destination: leg.Destination,
			Reason:      reason,
		}
	}

	if math.IsNaN(leg.Miles) || math.IsInf(leg.Miles, 0) || leg.Miles < 0 || leg.Duration < 0 {
		return unsplittable(fmt.Sprintf("invalid distance %v mi or duration %s", leg.Miles, leg.Duration))
	}
	if leg.Miles > 0 && leg.Duration == 0 {
		return unsplittable(fmt.Sprintf("%.1f mi reported with no driving time", leg.Miles))
	}

	return nil
}

// drive consumes the driving time of one leg, inserting rest and fuel stops as needed.
func (s *scheduler) drive(legIndex int, leg domain.Leg) error {
	if leg.Duration == 0 {
		s.here = leg.Destination
		return nil
	}

	s.here = leg.Origin
	mph := leg.Miles / leg.Duration.Hours()
	milesAt := func(d time.Duration) float64 {
		return leg.Miles * float64(d) / float64(leg.Duration)
	}
	remarks := fmt.Sprintf("Driving %s to %s", leg.Origin, leg.Destination)

	var driven time.Duration
	for driven < leg.Duration {
		switch {
		case s.clock.cycleLeft() <= 0:
			s.restart(s.restStopName())
			continue
		case s.clock.windowLeft(s.now) <= 0 || s.clock.drivingLeft() <= 0:
			s.reset(s.restStopName())
			continue
		case s.clock.breakLeft() <= 0:
			s.takeBreak(s.restStopName())
			continue
		case s.fuelDue():
			if err := s.fuel(legIndex); err != nil {
				return err
			}
			continue
		}

		remaining := leg.Duration - driven
		chunk := min(remaining, s.clock.cycleLeft(), s.clock.windowLeft(s.now), s.clock.drivingLeft(), s.clock.breakLeft())

		if mph > 0 {
			secs := (s.rules.FuelIntervalMiles - s.clock.milesSinceFuel) / mph * 3600
			if secs < remaining.Seconds() {
				toFuel := max(time.Duration(math.Round(secs))*time.Second, time.Second)
				chunk = min(chunk, toFuel)
			}
		}

		miles := milesAt(driven+chunk) - milesAt(driven)
		s.clock.recordOnDuty(s.now, chunk, true)
		s.clock.milesSinceFuel += miles
		s.milesDriven += miles
		s.emit(domain.StatusDriving, chunk, domain.StopNone, s.here, remarks, miles)

		driven += chunk
	}

	s.here = leg.Destination
	return nil
}

// fuelDue reports whether the fuel interval has been driven and driving remains.
func (s *scheduler) fuelDue() bool {
	return s.clock.milesSinceFuel >= s.rules.FuelIntervalMiles-fuelSlackMiles &&
		s.milesDriven < s.totalMiles-fuelSlackMiles
}

func (s *scheduler) fuel(legIndex int) error {
	name := fmt.Sprintf("Fuel Stop %d", s.out.FuelStops+1)
	remarks := fmt.Sprintf("Fueling at mile %.0f", s.milesDriven)

	if err := s.onDuty(domain.StopFuel, domain.LocationFuel, name, s.rules.FuelStopDuration, remarks, legIndex); err != nil {
		return err
	}

	s.out.FuelStops++
	s.clock.milesSinceFuel = 0
	s.here = name
	return nil
}

// handle schedules pickup or dropoff time at location.
func (s *scheduler) handle(kind domain.StopKind, location string, d time.Duration, remarks string) error {
	s.here = location
	typ := domain.LocationPickup
	if kind == domain.StopDropoff {
		typ = domain.LocationDropoff
	}
	return s.onDuty(kind, typ, location, d, remarks, -1)
}

// onDuty schedules on-duty, not driving time, first inserting a restart or
// reset when it would not fit in the cycle or the current window.
func (s *scheduler) onDuty(
	kind domain.StopKind,
	typ domain.LocationType,
	location string,
	d time.Duration,
	remarks string,
	legIndex int,
) error {
	if d > s.rules.DutyWindow || d > s.rules.CycleLimit {
		return &domain.UnsplittableLegError{
			LegIndex: legIndex,
			Reason:   fmt.Sprintf("%s of %s does not fit in a %s duty window", kind, d, formatHours(s.rules.DutyWindow)),
		}
	}

	if s.clock.cycleLeft() < d {
		s.restart(location)
	}
	if s.clock.windowLeft(s.now) < d {
		s.reset(location)
	}

	s.addStop(typ, location, d)
	if d == 0 {
		return nil
	}

	s.clock.recordOnDuty(s.now, d, false)
	s.emit(domain.StatusOnDuty, d, kind, location, remarks, 0)
	return nil
}

func (s *scheduler) takeBreak(location string) {
	d := s.rules.BreakDuration
	s.rest(domain.StopBreak, domain.StatusOffDuty, location, d, fmt.Sprintf("%.0f-minute break", d.Minutes()))
	s.clock.recordBreak()
	s.out.Breaks++
}

func (s *scheduler) reset(location string) {
	d := s.rules.DailyReset
	s.rest(domain.StopReset, s.rules.ResetStatus, location, d, formatHours(d)+" reset")
	s.clock.recordReset()
	s.out.Resets++
}

func (s *scheduler) restart(location string) {
	d := s.rules.CycleRestart
	s.rest(domain.StopRestart, domain.StatusOffDuty, location, d, formatHours(d)+" cycle restart")
	s.clock.recordRestart()
	s.out.Restarts++
}

func (s *scheduler) rest(kind domain.StopKind, status domain.DutyStatus, location string, d time.Duration, remarks string) {
	s.addStop(domain.LocationRest, location, d)
	s.emit(status, d, kind, location, remarks, 0)
	s.here = location
}

func (s *scheduler) restStopName() string {
	return fmt.Sprintf("Rest Stop %d", s.out.RestStops()+1)
}

func (s *scheduler) addStop(typ domain.LocationType, location string, d time.Duration) {
	s.out.Stops = append(s.out.Stops, domain.Waypoint{
		Sequence:             len(s.out.Stops) + 1,
		Location:             location,
		Type:                 typ,
		DurationHours:        d.Hours(),
		DistanceFromPrevious: s.milesDriven - s.lastStopMiles,
		ArriveAt:             s.now,
	})
	s.lastStopMiles = s.milesDriven
}

func (s *scheduler) emit(
	status domain.DutyStatus,
	d time.Duration,
	kind domain.StopKind,
	location string,
	remarks string,
	miles float64,
) {
	end := s.now.Add(d)
	s.out.Intervals = append(s.out.Intervals, domain.DutyInterval{
		Status:   status,
		Start:    s.now,
		End:      end,
		Location: location,
		Remarks:  remarks,
		Stop:     kind,
		Miles:    miles,
	})
	s.now = end
}

// formatHours renders a duration as "10-hour", "0.5-hour" and so on.
func formatHours(d time.Duration) string {
	return strconv.FormatFloat(d.Hours(), 'f', -1, 64) + "-hour"
}
