package scheduler

import (
	"testing"
	"time"

	"github.com/nextlevelbuilder/beacon/internal/store"
)

func TestNextFireOnceHasNoRecurrence(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	next, err := nextFire(store.RepeatOnce, base, nil)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	if next != nil {
		t.Fatalf("want nil recurrence for once, got %v", *next)
	}
}

func TestNextFireDailyAdvancesOneDay(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	next, err := nextFire(store.RepeatDaily, base, nil)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, *next)
	}
}

func TestNextFireWeeklyAdvancesSevenDays(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) // a Sunday
	next, err := nextFire(store.RepeatWeekly, base, nil)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := base.AddDate(0, 0, 7)
	if !next.Equal(want) {
		t.Fatalf("want %v, got %v", want, *next)
	}
}

func TestNextFireMonthlyClampsShortMonth(t *testing.T) {
	base := time.Date(2026, 1, 31, 8, 0, 0, 0, time.UTC)
	next, err := nextFire(store.RepeatMonthly, base, nil)
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := time.Date(2026, 2, 28, 8, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("want clamp to Feb 28, got %v", *next)
	}
}

func TestNextFireWorkingDaysSkipsWeekend(t *testing.T) {
	friday := time.Date(2026, 3, 6, 9, 0, 0, 0, time.UTC)
	next, err := nextFire(store.RepeatWorkingDays, friday, []int{1, 2, 3, 4, 5})
	if err != nil {
		t.Fatalf("nextFire: %v", err)
	}
	want := time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC) // the following Monday
	if !next.Equal(want) {
		t.Fatalf("want next Monday, got %v", *next)
	}
}

func TestNextWorkingDaySkipBranch(t *testing.T) {
	saturday := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2000, 1, 1, 14, 15, 0, 0, time.UTC)
	got := nextWorkingDay(saturday, clock, []int{1, 2, 3, 4, 5})
	want := time.Date(2026, 3, 9, 14, 15, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("want %v, got %v", want, got)
	}
}

func TestClampDayOfMonth(t *testing.T) {
	cases := []struct {
		year  int
		month time.Month
		day   int
		want  int
	}{
		{2026, time.February, 31, 28},
		{2024, time.February, 31, 29}, // leap year
		{2026, time.April, 31, 30},
		{2026, time.January, 15, 15},
	}
	for _, c := range cases {
		if got := clampDayOfMonth(c.year, c.month, c.day); got != c.want {
			t.Fatalf("clampDayOfMonth(%d, %s, %d) = %d, want %d", c.year, c.month, c.day, got, c.want)
		}
	}
}
