package domain

// completionFor finds the tally recorded for a date, nil when none.
func (h *Habit) completionFor(isoDate string) *Completion {
	for i := range h.Completions {
		if h.Completions[i].Date == isoDate {
			return &h.Completions[i]
		}
	}
	return nil
}

// IsDayComplete reports whether the day's count reached the goal. The
// goal is a threshold, not an exact match.
func (h *Habit) IsDayComplete(isoDate string) bool {
	c := h.completionFor(isoDate)
	return c != nil && c.Count >= h.EffectiveGoal()
}

// CountFor returns the raw count recorded for a date, zero when none.
func (h *Habit) CountFor(isoDate string) int {
	if c := h.completionFor(isoDate); c != nil {
		return c.Count
	}
	return 0
}

// CountCompletionsInRange sums raw counts over completion entries whose
// date falls inside the range. An invalid or empty range yields zero;
// that is a normal boundary, not a fault.
func (h *Habit) CountCompletionsInRange(r DateRange) int {
	if !r.IsValid() {
		return 0
	}

	total := 0
	for _, c := range h.Completions {
		day, err := ParseLocalDate(c.Date)
		if err != nil {
			continue
		}
		if r.Contains(day) {
			total += c.Count
		}
	}
	return total
}

// CountCompletedDaysInRange counts the goal-met days inside the range.
// A day that exceeds its goal still counts once.
func (h *Habit) CountCompletedDaysInRange(r DateRange) int {
	if !r.IsValid() {
		return 0
	}

	goal := h.EffectiveGoal()
	days := 0
	for _, c := range h.Completions {
		if c.Count < goal {
			continue
		}
		day, err := ParseLocalDate(c.Date)
		if err != nil {
			continue
		}
		if r.Contains(day) {
			days++
		}
	}
	return days
}

// SumCompletions is the all-time raw completion total.
func (h *Habit) SumCompletions() int {
	total := 0
	for _, c := range h.Completions {
		total += c.Count
	}
	return total
}
