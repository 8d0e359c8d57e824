package domain

import (
	"sort"
	"time"
)

// CompletedDates returns the sorted set of goal-met dates. The calendar
// widget highlights exactly these cells; streak numbers themselves stay
// authoritative on the habit record and are never re-derived by
// presentation code (shop items like streak shields are invisible
// there).
func (h *Habit) CompletedDates() []string {
	goal := h.EffectiveGoal()
	var dates []string
	for _, c := range h.Completions {
		if c.Count >= goal {
			dates = append(dates, c.Date)
		}
	}
	sort.Strings(dates)
	return dates
}

// CalculateStreaks derives the current and best streak from a set of
// goal-met ISO dates. The current streak is the consecutive run ending
// at the anchor day, or at the day before it when the anchor itself is
// not yet complete. Best is the longest consecutive run anywhere.
func CalculateStreaks(dates []string, anchor time.Time) (current, best int) {
	if len(dates) == 0 {
		return 0, 0
	}

	set := make(map[string]bool, len(dates))
	var days []time.Time
	for _, d := range dates {
		t, err := ParseLocalDate(d)
		if err != nil {
			continue
		}
		key := FormatLocalDate(t)
		if !set[key] {
			set[key] = true
			days = append(days, t)
		}
	}
	if len(days) == 0 {
		return 0, 0
	}

	cursor := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, time.UTC)
	if !set[FormatLocalDate(cursor)] {
		cursor = cursor.AddDate(0, 0, -1)
	}
	for set[FormatLocalDate(cursor)] {
		current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	best = 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > best {
			best = run
		}
	}
	if current > best {
		best = current
	}
	return current, best
}
