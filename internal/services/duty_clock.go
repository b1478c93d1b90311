package services

import (
	"time"
)

// dutyClock is the rolling HOS state of one scheduling run.
// It lives on the scheduler's stack and is discarded when scheduling completes.
type dutyClock struct {
	rules Rules

	cycleUsed         time.Duration
	windowOpen        bool
	windowStart       time.Time
	drivingInWindow   time.Duration
	drivingSinceBreak time.Duration
	milesSinceFuel    float64
}

func newDutyClock(rules Rules, startingCycle time.Duration) *dutyClock {
	return &dutyClock{rules: rules, cycleUsed: startingCycle}
}

// cycleLeft is the on-duty time left before the 70-hour limit.
func (c *dutyClock) cycleLeft() time.Duration {
	return c.rules.CycleLimit - c.cycleUsed
}

// windowLeft is the time left in the 14-hour window at now. A closed window
// opens with the next on-duty activity, so the full window is available.
func (c *dutyClock) windowLeft(now time.Time) time.Duration {
	if !c.windowOpen {
		return c.rules.DutyWindow
	}
	return c.windowStart.Add(c.rules.DutyWindow).Sub(now)
}

func (c *dutyClock) drivingLeft() time.Duration {
	return c.rules.MaxDriving - c.drivingInWindow
}

func (c *dutyClock) breakLeft() time.Duration {
	return c.rules.BreakAfter - c.drivingSinceBreak
}

// recordOnDuty accounts for on-duty time starting at start. Driving time
// also counts toward the driving limit and the break counter.
func (c *dutyClock) recordOnDuty(start time.Time, d time.Duration, driving bool) {
	if !c.windowOpen {
		c.windowOpen = true
		c.windowStart = start
	}
	c.cycleUsed += d
	if driving {
		c.drivingInWindow += d
		c.drivingSinceBreak += d
	}
}

func (c *dutyClock) recordBreak() {
	c.drivingSinceBreak = 0
}

func (c *dutyClock) recordReset() {
	c.windowOpen = false
	c.windowStart = time.Time{}
	c.drivingInWindow = 0
	c.drivingSinceBreak = 0
}

func (c *dutyClock) recordRestart() {
	c.recordReset()
	c.cycleUsed = 0
}
