// Package period turns symbolic reporting tokens ("7days", "thismonth", ...)
// into concrete date windows. Every function is pure given the reference time
// and works in the location of that time.
package period

import (
	"fmt"
	"strings"
	"time"

	errors "github.com/frahmantamala/fintrack/internal"
)

const (
	Last7Days   = "7days"
	Last30Days  = "30days"
	Last3Months = "3months"
	Last6Months = "6months"
	LastYear1   = "1year"

	ThisMonth = "thismonth"
	LastMonth = "lastmonth"
	ThisYear  = "thisyear"
	LastYear  = "lastyear"

	DefaultRange = Last30Days

	MonthKeyLayout = "2006-01"
	DateLayout     = "2006-01-02"
)

// Window is an inclusive [Start, End] range. End is the last nanosecond of its day.
type Window struct {
	Start time.Time `json:"startDate"`
	End   time.Time `json:"endDate"`
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// Days is the number of calendar days touched by the window.
func (w Window) Days() int {
	start := StartOfDay(w.Start)
	end := StartOfDay(w.End)
	return int(end.Sub(start).Hours()/24+0.5) + 1
}

// Resolve maps a relative time-range token to a window ending at the end of now's day.
// Unknown tokens fall back to DefaultRange.
func Resolve(token string, now time.Time) Window {
	end := EndOfDay(now)

	var start time.Time
	switch normalize(token) {
	case Last7Days:
		start = now.Add(-7 * 24 * time.Hour)
	case Last3Months:
		start = AddMonths(now, -3)
	case Last6Months:
		start = AddMonths(now, -6)
	case LastYear1:
		start = AddMonths(now, -12)
	default:
		start = now.Add(-30 * 24 * time.Hour)
	}

	return Window{Start: start, End: end}
}

// ResolvePeriod understands the absolute calendar tokens and delegates anything else to Resolve.
func ResolvePeriod(token string, now time.Time) Window {
	loc := now.Location()
	y, m, _ := now.Date()

	switch normalize(token) {
	case ThisMonth:
		return Window{Start: time.Date(y, m, 1, 0, 0, 0, 0, loc), End: EndOfDay(now)}
	case LastMonth:
		first := time.Date(y, m-1, 1, 0, 0, 0, 0, loc)
		return Window{Start: first, End: EndOfDay(time.Date(y, m, 0, 0, 0, 0, 0, loc))}
	case ThisYear:
		return Window{Start: time.Date(y, time.January, 1, 0, 0, 0, 0, loc), End: EndOfDay(now)}
	case LastYear:
		return Window{
			Start: time.Date(y-1, time.January, 1, 0, 0, 0, 0, loc),
			End:   EndOfDay(time.Date(y-1, time.December, 31, 0, 0, 0, 0, loc)),
		}
	default:
		return Resolve(token, now)
	}
}

// Label is the human readable name of a period token.
func Label(token string) string {
	switch normalize(token) {
	case ThisMonth:
		return "This Month"
	case LastMonth:
		return "Last Month"
	case ThisYear:
		return "This Year"
	case LastYear:
		return "Last Year"
	}
	return token
}

// Previous returns the window of equal length that ends right before w starts.
func Previous(w Window) Window {
	length := w.End.Sub(w.Start)
	end := w.Start.Add(-time.Nanosecond)
	return Window{Start: end.Add(-length), End: end}
}

// Month returns the calendar month containing t.
func Month(t time.Time) Window {
	y, m, _ := t.Date()
	start := time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
	return Window{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Nanosecond)}
}

// TrailingMonths returns n calendar months ending with the month of now, oldest first.
func TrailingMonths(now time.Time, n int) []Window {
	if n <= 0 {
		return nil
	}
	y, m, _ := now.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, now.Location())

	months := make([]Window, 0, n)
	for i := n - 1; i >= 0; i-- {
		months = append(months, Month(first.AddDate(0, -i, 0)))
	}
	return months
}

// MonthKey formats t as "YYYY-MM".
func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// ParseMonthKey parses a "YYYY-MM" key into the first instant of that month in loc.
func ParseMonthKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(MonthKeyLayout, strings.TrimSpace(key), loc)
	if err != nil {
		return time.Time{}, errors.NewValidationFieldError("month", fmt.Sprintf("month %q must use YYYY-MM format", key), errors.ErrCodeInvalidMonth)
	}
	return t, nil
}

// AddMonths shifts t by n calendar months, clamping the day to the target month's length.
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	hh, mm, ss := t.Clock()

	target := time.Date(y, m+time.Month(n), 1, 0, 0, 0, 0, t.Location())
	if last := DaysIn(target.Year(), target.Month(), t.Location()); d > last {
		d = last
	}
	return time.Date(target.Year(), target.Month(), d, hh, mm, ss, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}

// DateInMonth builds the given day of t's month, clamped to the month's last day.
func DateInMonth(t time.Time, day int) time.Time {
	y, m, _ := t.Date()
	if last := DaysIn(y, m, t.Location()); day > last {
		day = last
	}
	if day < 1 {
		day = 1
	}
	return time.Date(y, m, day, 0, 0, 0, 0, t.Location())
}

func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// MonthsBetween counts whole calendar month steps from a to b (negative when b precedes a).
func MonthsBetween(a, b time.Time) int {
	return (b.Year()-a.Year())*12 + int(b.Month()) - int(a.Month())
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
