package model

import "time"

const dayLayout = "2006-01-02"

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDay parses a YYYY-MM-DD date as UTC midnight.
func ParseDay(s string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, s, time.UTC)
}

// DateRange is an inclusive [From, To] range of calendar days.
type DateRange struct {
	From time.Time
	To   time.Time
}

// NewDateRange normalizes both ends to UTC midnight.
func NewDateRange(from, to time.Time) DateRange {
	return DateRange{From: Day(from), To: Day(to)}
}

// LookbackWindow returns [today-(days+1), today-1], a window ending yesterday.
func LookbackWindow(now time.Time, days int) DateRange {
	today := Day(now)
	return DateRange{
		From: today.AddDate(0, 0, -(days + 1)),
		To:   today.AddDate(0, 0, -1),
	}
}

// Empty reports whether From is after To.
func (r DateRange) Empty() bool {
	return r.From.After(r.To)
}

// Contains reports whether day falls inside the range.
func (r DateRange) Contains(day time.Time) bool {
	d := Day(day)
	return !d.Before(r.From) && !d.After(r.To)
}

func (r DateRange) String() string {
	return r.From.Format(dayLayout) + ".." + r.To.Format(dayLayout)
}
