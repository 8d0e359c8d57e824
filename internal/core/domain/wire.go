package domain

// HabitRecord is the snake_case wire shape of a habit as the Mini App
// consumes it. It is the single normalization boundary: everything
// inside the engine works on Habit, and no aggregate ever reads a raw
// record field directly.
type HabitRecord struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Icon             string       `json:"icon"`
	Category         Category     `json:"category"`
	Goal             int          `json:"goal"`
	CurrentSteps     int          `json:"current_steps"`
	TotalSteps       int          `json:"total_steps"`
	Progress         float64      `json:"progress"`
	Completed        bool         `json:"completed"`
	RepeatDays       []string     `json:"repeat_days"`
	Reminder         bool         `json:"reminder"`
	ReminderTimes    []string     `json:"reminder_times"`
	Visibility       string       `json:"visibility"`
	CompletedDates   []string     `json:"completed_dates"`
	Completions      []Completion `json:"completions"`
	TotalCompletions int          `json:"total_completions"`
	CurrentStreak    int          `json:"current_streak"`
	BestStreak       int          `json:"best_streak"`
	SourceHabitID    string       `json:"source_habit_id,omitempty"`
}

// HabitFromRecord normalizes a wire record into the internal shape.
// Missing collections become empty, never nil that could leak into the
// aggregators, and a non-positive goal clamps to the minimum of one.
func HabitFromRecord(rec HabitRecord) *Habit {
	goal := rec.Goal
	if goal < 1 {
		goal = 1
	}

	h := &Habit{
		ID:               rec.ID,
		Title:            rec.Title,
		Icon:             rec.Icon,
		CategoryID:       rec.Category.ID,
		CategoryName:     rec.Category.Name,
		Goal:             goal,
		RepeatDays:       rec.RepeatDays,
		Reminder:         rec.Reminder,
		ReminderTimes:    rec.ReminderTimes,
		Visibility:       rec.Visibility,
		Completions:      rec.Completions,
		TotalCompletions: rec.TotalCompletions,
		CurrentStreak:    rec.CurrentStreak,
		BestStreak:       rec.BestStreak,
		SourceHabitID:    rec.SourceHabitID,
	}
	if h.Visibility != VisibilityPublic {
		h.Visibility = VisibilityPrivate
	}
	if h.RepeatDays == nil {
		h.RepeatDays = []string{}
	}
	if h.ReminderTimes == nil {
		h.ReminderTimes = []string{}
	}
	if h.Completions == nil {
		h.Completions = []Completion{}
	}
	return h
}

// ToRecord renders the habit as the wire shape, with the day-scoped
// derived fields (current steps, progress, completed) computed for the
// given date.
func (h *Habit) ToRecord(isoDate string) HabitRecord {
	goal := h.EffectiveGoal()
	steps := h.CountFor(isoDate)

	rec := HabitRecord{
		ID:               h.ID,
		Title:            h.Title,
		Icon:             h.Icon,
		Category:         Category{ID: h.CategoryID, Name: h.CategoryName},
		Goal:             goal,
		CurrentSteps:     steps,
		TotalSteps:       goal,
		Progress:         float64(steps) / float64(goal),
		Completed:        steps >= goal,
		RepeatDays:       h.RepeatDays,
		Reminder:         h.Reminder,
		ReminderTimes:    h.ReminderTimes,
		Visibility:       h.Visibility,
		CompletedDates:   h.CompletedDates(),
		Completions:      h.Completions,
		TotalCompletions: h.TotalCompletions,
		CurrentStreak:    h.CurrentStreak,
		BestStreak:       h.BestStreak,
		SourceHabitID:    h.SourceHabitID,
	}
	if rec.RepeatDays == nil {
		rec.RepeatDays = []string{}
	}
	if rec.ReminderTimes == nil {
		rec.ReminderTimes = []string{}
	}
	if rec.CompletedDates == nil {
		rec.CompletedDates = []string{}
	}
	if rec.Completions == nil {
		rec.Completions = []Completion{}
	}
	return rec
}

// HabitPayload is the create/update request body, the inverse of the
// record mapping for form submissions.
type HabitPayload struct {
	Title         string   `json:"title"`
	Icon          string   `json:"icon"`
	CategoryID    int64    `json:"category_id,omitempty"`
	Goal          int      `json:"goal"`
	RepeatDays    []string `json:"repeat_days"`
	Reminder      bool     `json:"reminder"`
	ReminderTimes []string `json:"reminder_times"`
	Visibility    string   `json:"visibility"`
}

func (p HabitPayload) Form() HabitForm {
	return HabitForm{
		Title:         p.Title,
		Icon:          p.Icon,
		CategoryID:    p.CategoryID,
		Goal:          p.Goal,
		RepeatDays:    p.RepeatDays,
		Reminder:      p.Reminder,
		ReminderTimes: p.ReminderTimes,
		Visibility:    p.Visibility,
	}
}

// ToPayload renders the habit back into submission shape. Defaults
// mirror the form rules: goal at least one, repeat days empty meaning
// every day, visibility private unless explicitly public.
func (h *Habit) ToPayload() HabitPayload {
	p := HabitPayload{
		Title:         h.Title,
		Icon:          h.Icon,
		CategoryID:    h.CategoryID,
		Goal:          h.EffectiveGoal(),
		RepeatDays:    h.RepeatDays,
		Reminder:      h.Reminder,
		ReminderTimes: h.ReminderTimes,
		Visibility:    h.Visibility,
	}
	if p.RepeatDays == nil {
		p.RepeatDays = []string{}
	}
	if p.ReminderTimes == nil {
		p.ReminderTimes = []string{}
	}
	if p.Visibility != VisibilityPublic {
		p.Visibility = VisibilityPrivate
	}
	return p
}
