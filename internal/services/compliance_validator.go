package services

import (
	"fmt"
	"hos-trip-service/internal/domain"
	"time"
)

// complianceTolerance absorbs sub-second drift in externally produced intervals.
const complianceTolerance = time.Second

// ValidateSchedule re-walks an interval sequence with its own counters and
// reports every HOS rule it breaks. An empty result means the schedule complies.
//
// It shares no state with the scheduler, so a scheduler defect shows up here.
func ValidateSchedule(intervals []domain.DutyInterval, startingCycle time.Duration, rules Rules) []domain.Violation {
	var (
		violations      []domain.Violation
		cycle           = startingCycle
		windowOpen      bool
		windowStart     time.Time
		drivingInWindow time.Duration
		sinceBreak      time.Duration
		restRun         time.Duration
	)

	report := func(rule domain.Rule, i int, at time.Time, format string, args ...any) {
		violations = append(violations, domain.Violation{
			Rule:     rule,
			At:       at,
			Interval: i,
			Detail:   fmt.Sprintf(format, args...),
		})
	}

	for i, iv := range intervals {
		if i > 0 {
			prevEnd := intervals[i-1].End
			switch {
			case iv.Start.After(prevEnd):
				report(domain.RuleContinuity, i, prevEnd, "gap of %s before interval", iv.Start.Sub(prevEnd))
			case iv.Start.Before(prevEnd):
				report(domain.RuleContinuity, i, iv.Start, "overlaps previous interval by %s", prevEnd.Sub(iv.Start))
			}
		}

		d := iv.Duration()
		if d <= 0 {
			report(domain.RuleContinuity, i, iv.Start, "interval has non-positive duration %s", d)
			continue
		}

		if iv.Status.IsRest() {
			restRun += d
			continue
		}
		if !iv.Status.IsOnDuty() {
			report(domain.RuleContinuity, i, iv.Start, "unknown duty status %q", iv.Status)
			continue
		}

		switch {
		case restRun >= rules.CycleRestart:
			cycle = 0
			windowOpen = false
			drivingInWindow, sinceBreak = 0, 0
		case restRun >= rules.DailyReset:
			windowOpen = false
			drivingInWindow, sinceBreak = 0, 0
		case restRun >= rules.BreakDuration:
			sinceBreak = 0
		}
		restRun = 0

		if !windowOpen {
			windowOpen = true
			windowStart = iv.Start
		}
		cycle += d

		if iv.Status == domain.StatusDriving {
			drivingInWindow += d
			sinceBreak += d

			if sinceBreak > rules.BreakAfter+complianceTolerance {
				report(domain.RuleBreak, i, iv.End, "%s driving since last %s break", sinceBreak, rules.BreakDuration)
			}
			if drivingInWindow > rules.MaxDriving+complianceTolerance {
				report(domain.RuleDrivingLimit, i, iv.End, "%s driving since last reset", drivingInWindow)
			}
			if w := iv.End.Sub(windowStart); w > rules.DutyWindow+complianceTolerance {
				report(domain.RuleDutyWindow, i, iv.End, "driving %s after duty window opened", w)
			}
		}

		if cycle > rules.CycleLimit+complianceTolerance {
			report(domain.RuleCycleLimit, i, iv.End, "%s on duty in cycle", cycle)
		}
	}

	return violations
}
