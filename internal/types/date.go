package types

import (
	"time"
)

// DateOnly normalizes a timestamp to midnight UTC. All billing math operates
// on calendar days, never on time-of-day.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay reports whether two timestamps fall on the same calendar day in UTC.
func SameDay(a, b time.Time) bool {
	return DateOnly(a).Equal(DateOnly(b))
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOnly(b).Sub(DateOnly(a)).Hours() / 24)
}

// DaysInMonth returns the number of days in the calendar month containing t.
func DaysInMonth(t time.Time) int {
	t = DateOnly(t)
	firstOfNextMonth := time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	return firstOfNextMonth.AddDate(0, 0, -1).Day()
}

// DaysInYear returns the number of days in the calendar year containing t
// (366 in leap years).
func DaysInYear(t time.Time) int {
	year := DateOnly(t).Year()
	first := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(year+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	return int(next.Sub(first).Hours() / 24)
}

// NextBillingDate calculates the end of the billing cycle that starts at the
// given date: exactly one calendar month or year later. Day-of-month overflow
// is clamped to the last valid day of the target month (2024-01-31 plus one
// month is 2024-02-29), which plain time.AddDate would normalize past the
// month boundary instead.
func NextBillingDate(start time.Time, cycle BillingCycle) time.Time {
	switch cycle {
	case BillingCycleYearly:
		return AddClampedDate(start, 1, 0, 0)
	default:
		return AddClampedDate(start, 0, 1, 0)
	}
}

// AddClampedDate adds the given years, months, and days to t, clamping the
// resulting day-of-month to the last valid day of the target month.
func AddClampedDate(t time.Time, years, months, days int) time.Time {
	y, m, d := t.Date()
	h, min, sec := t.Clock()

	newY := y + years
	newM := time.Month(int(m) + months)

	// If we move beyond December, it adjusts correctly,
	// for example adding 2 months to November will land on January next year.
	for newM > 12 {
		newM -= 12
		newY++
	}
	for newM < 1 {
		newM += 12
		newY--
	}

	// Find the last valid day of the new month
	firstOfNextMonth := time.Date(newY, newM+1, 1, 0, 0, 0, 0, t.Location())
	lastDay := firstOfNextMonth.AddDate(0, 0, -1).Day()

	newD := d
	if newD > lastDay {
		newD = lastDay
	}

	return time.Date(newY, newM, newD, h, min, sec, t.Nanosecond(), t.Location()).AddDate(0, 0, days)
}
