package scheduler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/adhocore/gronx"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

// cron is shared across every recurrence computation; Gronx is stateless
// and safe for concurrent use.
var cron = gronx.New()

// nextFire computes the next absolute fire time for repeatType, strictly
// after base. A nil result means the notification has no further
// occurrence (repeatType once).
func nextFire(repeatType store.RepeatType, base time.Time, workingDays []int) (*time.Time, error) {
	hh, mm := base.Hour(), base.Minute()

	switch repeatType {
	case store.RepeatOnce:
		return nil, nil

	case store.RepeatDaily:
		return nextTickAfter(fmt.Sprintf("%d %d * * *", mm, hh), base)

	case store.RepeatWeekly:
		return nextTickAfter(fmt.Sprintf("%d %d * * %d", mm, hh, int(base.Weekday())), base)

	case store.RepeatMonthly:
		year, month, _ := base.Date()
		nextMonth := month + 1
		nextYear := year
		if nextMonth > time.December {
			nextMonth = time.January
			nextYear++
		}
		day := clampDayOfMonth(nextYear, nextMonth, base.Day())
		expr := fmt.Sprintf("%d %d %d %d *", mm, hh, day, int(nextMonth))
		return nextTickAfter(expr, base)

	case store.RepeatWorkingDays:
		if len(workingDays) == 0 {
			next := base.AddDate(0, 0, 1)
			return &next, nil
		}
		return nextTickAfter(fmt.Sprintf("%d %d * * %s", mm, hh, csvInts(workingDays)), base)

	default:
		return nil, fmt.Errorf("scheduler: unknown repeat type %q", repeatType)
	}
}

func nextTickAfter(expr string, base time.Time) (*time.Time, error) {
	t, err := cron.NextTickAfter(expr, base, false)
	if err != nil {
		return nil, fmt.Errorf("scheduler: compute next tick for %q: %w", expr, err)
	}
	t = t.In(base.Location())
	return &t, nil
}

// clampDayOfMonth returns day if that day exists in year/month, otherwise
// the last valid day of that month.
func clampDayOfMonth(year int, month time.Month, day int) int {
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > lastDay {
		return lastDay
	}
	return day
}

// nextWorkingDay returns the soonest calendar day strictly after today
// whose weekday is in workingDays, carrying clockTime's hour/minute. It
// searches up to 7 days ahead and falls back to today+1 if workingDays is
// empty.
func nextWorkingDay(today, clockTime time.Time, workingDays []int) time.Time {
	hh, mm := clockTime.Hour(), clockTime.Minute()
	if len(workingDays) == 0 {
		d := today.AddDate(0, 0, 1)
		return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, today.Location())
	}

	allowed := make(map[int]bool, len(workingDays))
	for _, d := range workingDays {
		allowed[d] = true
	}

	for offset := 1; offset <= 7; offset++ {
		d := today.AddDate(0, 0, offset)
		if allowed[int(d.Weekday())] {
			return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, today.Location())
		}
	}
	// Unreachable when workingDays is non-empty (some weekday always
	// recurs within 7 days), kept as a defensive fallback.
	d := today.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), hh, mm, 0, 0, today.Location())
}

func csvInts(vals []int) string {
	sorted := append([]int(nil), vals...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, v := range sorted {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}
