// Package timeutil provides calendar-day boundary helpers for the bot.
// All daily windows (the experience cap, badge checks, the yesterday report)
// are anchored to local midnight in a configured location, so every helper
// takes an explicit *time.Location instead of assuming the server timezone.
package timeutil

import "time"

// StartOfDay returns midnight of the day containing t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfToday returns midnight of the current day in loc.
func StartOfToday(now time.Time, loc *time.Location) time.Time {
	return StartOfDay(now, loc)
}

// YesterdayRange returns the half-open window [start of yesterday, start of
// today) in loc. The end bound is exclusive: an event stamped exactly at
// today's midnight belongs to today, not yesterday.
func YesterdayRange(now time.Time, loc *time.Location) (start, end time.Time) {
	end = StartOfDay(now, loc)
	start = end.AddDate(0, 0, -1)
	return start, end
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	la, lb := a.In(loc), b.In(loc)
	return la.Year() == lb.Year() && la.YearDay() == lb.YearDay()
}

// NextDailyAt returns the next occurrence of hour:minute in loc strictly
// after t. Used by the daily report schedule.
func NextDailyAt(t time.Time, hour, minute int, loc *time.Location) time.Time {
	lt := t.In(loc)
	next := time.Date(lt.Year(), lt.Month(), lt.Day(), hour, minute, 0, 0, loc)
	if !next.After(lt) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
