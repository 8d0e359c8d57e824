package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty     = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong   = errors.New("habit title is too long (max 100 chars)")
	ErrHabitInvalidOwner   = errors.New("invalid owner id")
	ErrHabitNotFound       = errors.New("habit not found")
	ErrInvalidReminder     = errors.New("invalid reminder time (must be HH:MM 24h)")
	ErrCompletionPending   = errors.New("a completion for this habit is already in flight")
	ErrFutureDate          = errors.New("cannot complete a habit for a future date")
	ErrHabitNotScheduled   = errors.New("habit is not scheduled for this day")
	ErrHabitNotPublic      = errors.New("habit is not public")
	ErrHabitAlreadyCopied  = errors.New("habit has already been copied")
	ErrParticipantNotFound = errors.New("participant not found")
)

var reminderRegex = regexp.MustCompile(`^([0-1][0-9]|2[0-3]):[0-5][0-9]$`)

const (
	VisibilityPublic  = "Public"
	VisibilityPrivate = "Private"

	MaxTitleLen      = 100
	MaxReminderTimes = 3
	DefaultStatsDays = 30
	DefaultIcon      = "✅"
)

// Category is display metadata for a habit. Balance buckets key on the
// label, not the id.
type Category struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Completion is one dated completion tally. At most one exists per date
// and its count only ever grows within a session.
type Completion struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type Habit struct {
	ID            string `db:"id"`
	OwnerID       string `db:"owner_id"`
	Title         string `db:"title"`
	Icon          string `db:"icon"`
	CategoryID    int64  `db:"category_id"`
	CategoryName  string `db:"category_name"`
	Goal          int    `db:"goal"`
	RepeatDays    []string
	Reminder      bool `db:"reminder"`
	ReminderTimes []string
	Visibility    string `db:"visibility"`

	Completions      []Completion
	TotalCompletions int    `db:"total_completions"`
	CurrentStreak    int    `db:"current_streak"`
	BestStreak       int    `db:"best_streak"`
	SourceHabitID    string `db:"source_habit_id"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HabitForm is the user-submitted shape for create and update. All
// normalization is lenient: values are clamped into validity instead of
// rejected, except for a blank title.
type HabitForm struct {
	Title         string
	Icon          string
	CategoryID    int64
	Goal          int
	RepeatDays    []string
	Reminder      bool
	ReminderTimes []string
	Visibility    string
}

// normalizeRepeatDays keeps only known Monday-first weekday names,
// deduplicated in weekday order. Empty means every day.
func normalizeRepeatDays(days []string) []string {
	if len(days) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(days))
	for _, d := range days {
		seen[strings.TrimSpace(d)] = true
	}

	var normalized []string
	for _, name := range WeekdayNames {
		if seen[name] {
			normalized = append(normalized, name)
		}
	}
	return normalized
}

func normalizeReminderTimes(times []string) ([]string, error) {
	var normalized []string
	for _, t := range times {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if !reminderRegex.MatchString(t) {
			return nil, ErrInvalidReminder
		}
		normalized = append(normalized, t)
		if len(normalized) == MaxReminderTimes {
			break
		}
	}
	return normalized, nil
}

func (f HabitForm) normalize() (HabitForm, error) {
	f.Title = strings.TrimSpace(f.Title)
	if f.Title == "" {
		return f, ErrHabitTitleEmpty
	}
	if len(f.Title) > MaxTitleLen {
		return f, ErrHabitTitleTooLong
	}

	if f.Icon == "" {
		f.Icon = DefaultIcon
	}
	if f.Goal < 1 {
		f.Goal = 1
	}
	if f.Visibility != VisibilityPublic {
		f.Visibility = VisibilityPrivate
	}

	f.RepeatDays = normalizeRepeatDays(f.RepeatDays)

	times, err := normalizeReminderTimes(f.ReminderTimes)
	if err != nil {
		return f, err
	}
	f.ReminderTimes = times
	if len(f.ReminderTimes) == 0 {
		f.Reminder = false
	}

	return f, nil
}

func NewHabit(ownerID string, form HabitForm) (*Habit, error) {
	if ownerID == "" {
		return nil, ErrHabitInvalidOwner
	}

	form, err := form.normalize()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Habit{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Title:         form.Title,
		Icon:          form.Icon,
		CategoryID:    form.CategoryID,
		Goal:          form.Goal,
		RepeatDays:    form.RepeatDays,
		Reminder:      form.Reminder,
		ReminderTimes: form.ReminderTimes,
		Visibility:    form.Visibility,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (h *Habit) Update(form HabitForm) error {
	form, err := form.normalize()
	if err != nil {
		return err
	}

	h.Title = form.Title
	h.Icon = form.Icon
	if form.CategoryID != 0 {
		h.CategoryID = form.CategoryID
	}
	h.Goal = form.Goal
	h.RepeatDays = form.RepeatDays
	h.Reminder = form.Reminder
	h.ReminderTimes = form.ReminderTimes
	h.Visibility = form.Visibility
	h.UpdatedAt = time.Now().UTC()

	return nil
}

// EffectiveGoal guards against a misconfigured zero goal: the minimum
// valid daily goal is one.
func (h *Habit) EffectiveGoal() int {
	if h.Goal < 1 {
		return 1
	}
	return h.Goal
}

func (h *Habit) IsPublic() bool {
	return h.Visibility == VisibilityPublic
}

// ScheduledOn reports whether the habit runs on the given date. An
// empty repeat-day list means every day. An unparseable date counts as
// not scheduled rather than failing the caller.
func (h *Habit) ScheduledOn(isoDate string) bool {
	if len(h.RepeatDays) == 0 {
		return true
	}
	name, err := WeekdayName(isoDate)
	if err != nil {
		return false
	}
	for _, d := range h.RepeatDays {
		if d == name {
			return true
		}
	}
	return false
}

// CopyFor clones a public habit for another user, pointing back at the
// source. The copy starts private with a clean completion history.
func (h *Habit) CopyFor(ownerID string) (*Habit, error) {
	if ownerID == "" {
		return nil, ErrHabitInvalidOwner
	}
	if !h.IsPublic() {
		return nil, ErrHabitNotPublic
	}

	now := time.Now().UTC()
	return &Habit{
		ID:            uuid.New().String(),
		OwnerID:       ownerID,
		Title:         h.Title,
		Icon:          h.Icon,
		CategoryID:    h.CategoryID,
		CategoryName:  h.CategoryName,
		Goal:          h.EffectiveGoal(),
		RepeatDays:    append([]string(nil), h.RepeatDays...),
		Reminder:      h.Reminder,
		ReminderTimes: append([]string(nil), h.ReminderTimes...),
		Visibility:    VisibilityPrivate,
		SourceHabitID: h.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (h *Habit) UpdateStreaks(current, best int) {
	h.CurrentStreak = current
	h.BestStreak = best
	h.UpdatedAt = time.Now().UTC()
}
