package services

import (
	"hos-trip-service/internal/domain"
	"time"
)

// BuildLogSheets splits intervals at midnight and groups them into one sheet
// per calendar day, in the location of the interval timestamps. Full days
// total 24 hours only when that location has a fixed UTC offset.
//
// Each sheet opens with the cycle usage at the start of its day; the first
// sheet opens with startingCycle. Rest runs of at least rules.CycleRestart
// reset the running cycle for the days after them.
func BuildLogSheets(intervals []domain.DutyInterval, startingCycle time.Duration, rules Rules) []domain.LogSheet {
	if len(intervals) == 0 {
		return nil
	}

	var (
		sheets  []domain.LogSheet
		cycle   = startingCycle
		restRun time.Duration
	)

	for _, iv := range intervals {
		total := iv.Duration()
		first := true

		for start := iv.Start; start.Before(iv.End); {
			day := startOfDay(start)
			end := iv.End
			if next := day.AddDate(0, 0, 1); next.Before(end) {
				end = next
			}

			if n := len(sheets); n == 0 || !sheets[n-1].Date.Equal(day) {
				sheets = append(sheets, newLogSheet(day, cycle, rules))
			}
			sheet := &sheets[len(sheets)-1]

			seg := end.Sub(start)
			switch iv.Status {
			case domain.StatusDriving:
				sheet.DrivingHours += seg.Hours()
			case domain.StatusOnDuty:
				sheet.OnDutyHours += seg.Hours()
			case domain.StatusOffDuty:
				sheet.OffDutyHours += seg.Hours()
			case domain.StatusSleeper:
				sheet.SleeperHours += seg.Hours()
			}

			if total > 0 {
				sheet.TotalMiles += iv.Miles * float64(seg) / float64(total)
			}

			if first {
				if iv.Stop.IsRestStop() {
					sheet.RestStops++
				}
				if iv.Stop == domain.StopFuel {
					sheet.FuelStops++
				}
			}

			sheet.Entries = append(sheet.Entries, domain.LogEntry{
				Time:     start,
				Status:   iv.Status,
				Location: iv.Location,
				Remarks:  iv.Remarks,
			})

			if iv.Status.IsOnDuty() {
				cycle += seg
				restRun = 0
			} else {
				restRun += seg
				if restRun >= rules.CycleRestart {
					cycle = 0
				}
			}

			first = false
			start = end
		}
	}

	return sheets
}

func newLogSheet(day time.Time, cycle time.Duration, rules Rules) domain.LogSheet {
	return domain.LogSheet{
		Date:                day,
		CycleHoursUsed:      cycle.Hours(),
		CycleHoursRemaining: max(rules.CycleLimit-cycle, 0).Hours(),
	}
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
