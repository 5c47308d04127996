package service

import "time"

// ScheduleWindow computes the end of a job window: the confirmed start plus
// the estimated number of days.
func ScheduleWindow(startAt time.Time, estimatedDays int) time.Time {
	if estimatedDays < 1 {
		estimatedDays = 1
	}
	return startAt.AddDate(0, 0, estimatedDays)
}

// DaysSpanned returns the whole days a window covers, rounding partial days
// up so a rescheduled window never shrinks below its original span.
func DaysSpanned(startAt, endAt time.Time) int {
	if !endAt.After(startAt) {
		return 1
	}
	d := endAt.Sub(startAt)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// ReminderAt returns when the lead-time reminder for a window should fire.
// A start closer than the lead time gets no reminder (zero time).
func ReminderAt(startAt time.Time, lead time.Duration, now time.Time) time.Time {
	if lead <= 0 {
		return time.Time{}
	}
	at := startAt.Add(-lead)
	if !at.After(now) {
		return time.Time{}
	}
	return at
}

// Overlaps reports whether two half-open windows [aStart, aEnd) and
// [bStart, bEnd) intersect. The storage constraint is authoritative; this is
// for presentation-side checks.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
