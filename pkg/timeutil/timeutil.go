// Package timeutil provides time helpers for the WritingCoach service.
// Streak bookkeeping and the time-of-day badge windows both depend on
// consistent day boundaries, so the arithmetic lives here in one place.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Now returns the current time in UTC.
func Now() time.Time {
	return time.Now().UTC()
}

// StartOfDay returns midnight of the given day.
func StartOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last nanosecond of the given day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).Add(24*time.Hour - time.Nanosecond)
}

// StartOfWeek returns midnight Monday of the week containing t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(t).AddDate(0, 0, -(weekday - 1))
}

// SameDay reports whether two timestamps fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DaysBetween returns the number of calendar-day boundaries between a and b.
// Consecutive days return 1 regardless of the hours involved.
func DaysBetween(a, b time.Time) int {
	da := StartOfDay(a)
	db := StartOfDay(b)
	return int(db.Sub(da).Hours() / 24)
}

// DaysSince returns the number of calendar days elapsed since t.
func DaysSince(t time.Time) int {
	return DaysBetween(t, Now())
}

// IsToday reports whether t falls on the current day.
func IsToday(t time.Time) bool {
	return SameDay(t, Now())
}

// IsYesterday reports whether t falls on the day before the current day.
func IsYesterday(t time.Time) bool {
	return SameDay(t, Now().AddDate(0, 0, -1))
}

// Time-of-day windows for the completion-time badges. A lesson finished
// before EarlyBirdHour counts as an early-bird completion; one finished at
// NightOwlHour or later counts as a night-owl completion.
const (
	EarlyBirdHour = 9  // before 09:00 local time
	NightOwlHour  = 20 // at or after 20:00 local time
)

// IsEarlyBird reports whether t falls in the early-bird window.
func IsEarlyBird(t time.Time) bool {
	return t.Hour() < EarlyBirdHour
}

// IsNightOwl reports whether t falls in the night-owl window.
func IsNightOwl(t time.Time) bool {
	return t.Hour() >= NightOwlHour
}
