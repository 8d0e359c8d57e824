package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

const DateLayout = "2006-01-02"

// WeekdayNames is the canonical Monday-first week used by schedules.
var WeekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// FormatLocalDate renders the calendar date of t in t's own location.
// It deliberately avoids converting to UTC first: near midnight that
// would move the instant onto a different calendar day.
func FormatLocalDate(t time.Time) string {
	return fmt.Sprintf("%04d-%02d-%02d", t.Year(), int(t.Month()), t.Day())
}

// ParseLocalDate parses a strict YYYY-MM-DD string into a UTC midnight.
func ParseLocalDate(value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return t, nil
}

// MondayIndex maps Go's Sunday-first weekday to the Monday-first index
// the schedule model uses.
func MondayIndex(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

func WeekdayName(isoDate string) (string, error) {
	t, err := ParseLocalDate(isoDate)
	if err != nil {
		return "", err
	}
	return WeekdayNames[MondayIndex(t)], nil
}

// MonthGrid lays a month out as a Monday-first calendar: leading zeros
// pad up to the weekday of the first, then the day numbers follow.
func MonthGrid(year int, month time.Month) []int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	leading := MondayIndex(first)
	grid := make([]int, 0, leading+daysInMonth)
	for i := 0; i < leading; i++ {
		grid = append(grid, 0)
	}
	for day := 1; day <= daysInMonth; day++ {
		grid = append(grid, day)
	}
	return grid
}

// DateRange is an inclusive calendar interval.
type DateRange struct {
	Start time.Time
	End   time.Time
}

func NewDateRange(start, end string) (DateRange, error) {
	s, err := ParseLocalDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseLocalDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: s, End: e}, nil
}

func (r DateRange) IsValid() bool {
	return !r.Start.IsZero() && !r.End.IsZero() && !r.Start.After(r.End)
}

func (r DateRange) Contains(t time.Time) bool {
	if !r.IsValid() {
		return false
	}
	return !t.Before(r.Start) && !t.After(r.End)
}

// ClampToWindow bounds the range to the last windowDays days ending at
// today. A non-positive window falls back to the default.
func (r DateRange) ClampToWindow(today time.Time, windowDays int) DateRange {
	if windowDays < 1 {
		windowDays = DefaultStatsDays
	}
	earliest := today.AddDate(0, 0, -(windowDays - 1))

	clamped := r
	if clamped.Start.Before(earliest) {
		clamped.Start = earliest
	}
	if clamped.End.After(today) {
		clamped.End = today
	}
	return clamped
}

// Days is the inclusive day count, zero for an invalid range.
func (r DateRange) Days() int {
	if !r.IsValid() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}
