package scheduler

import (
	"fmt"
	"time"

	"github.com/cookie-hub/cookie-growth-bot/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEDULES
// ══════════════════════════════════════════════════════════════════════════════

// IntervalSchedule runs a job at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// Every creates an interval schedule. Intervals below one second are
// raised to one second to stay above the loop tick.
func Every(interval time.Duration) IntervalSchedule {
	if interval < time.Second {
		interval = time.Second
	}
	return IntervalSchedule{Interval: interval}
}

// Next returns t plus the interval.
func (s IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

func (s IntervalSchedule) String() string {
	return fmt.Sprintf("every %s", s.Interval)
}

// DailySchedule runs a job once a day at a fixed local time.
type DailySchedule struct {
	Hour     int
	Minute   int
	Location *time.Location
}

// DailyAt creates a daily schedule in the given location.
func DailyAt(hour, minute int, loc *time.Location) DailySchedule {
	if loc == nil {
		loc = time.UTC
	}
	return DailySchedule{Hour: hour, Minute: minute, Location: loc}
}

// Next returns the next occurrence of the configured time strictly
// after t.
func (s DailySchedule) Next(t time.Time) time.Time {
	return timeutil.NextDailyAt(t, s.Hour, s.Minute, s.Location)
}

func (s DailySchedule) String() string {
	return fmt.Sprintf("daily at %02d:%02d (%s)", s.Hour, s.Minute, s.Location)
}
