package services

import (
	"context"
	"time"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

type StatsService struct {
	habits      domain.HabitRepository
	completions domain.CompletionRepository
	users       domain.UserRepository
}

func NewStatsService(habits domain.HabitRepository, completions domain.CompletionRepository, users domain.UserRepository) *StatsService {
	return &StatsService{habits: habits, completions: completions, users: users}
}

func (s *StatsService) loadHabits(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	habits, err := s.habits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	events, err := s.completions.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	byHabit := make(map[string][]domain.Completion)
	for _, e := range events {
		byHabit[e.HabitID] = append(byHabit[e.HabitID], domain.Completion{Date: e.Date, Count: e.Count})
	}
	for _, h := range habits {
		h.Completions = byHabit[h.ID]
		if h.Completions == nil {
			h.Completions = []domain.Completion{}
		}
	}
	return habits, nil
}

// BalanceResult carries the colored wheel plus its ring layout so the
// client renders without recomputing geometry.
type BalanceResult struct {
	Wheel    domain.BalanceWheel   `json:"wheel"`
	Segments []domain.WheelSegment `json:"segments"`
}

// Balance builds the category balance wheel for a user. The user's own
// privacy setting decides whether private habits contribute; viewing
// someone else's profile always restricts to public habits.
func (s *StatsService) Balance(ctx context.Context, viewerID, profileID string) (*BalanceResult, error) {
	owner, err := s.users.GetByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	publicOnly := owner.BalanceWheelPublicOnly
	if viewerID != profileID {
		publicOnly = true
	}

	habits, err := s.loadHabits(ctx, profileID)
	if err != nil {
		return nil, err
	}

	wheel := domain.BuildBalance(habits, publicOnly)
	wheel.Items = domain.AssignColors(wheel.Items)
	return &BalanceResult{Wheel: wheel, Segments: wheel.Segments()}, nil
}

// PublicProfile is the reduced profile anyone may look up, used for the
// leaderboard and shared-habit member views.
type PublicProfile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	Level     int    `json:"level"`
	XP        int    `json:"xp"`
	Title     string `json:"title"`
	IsPremium bool   `json:"is_premium"`
}

func (s *StatsService) PublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &PublicProfile{
		ID:        user.ID,
		Name:      user.DisplayName(),
		Avatar:    user.PhotoURL,
		Level:     user.Level,
		XP:        user.XP,
		Title:     domain.TitleForLevel(user.Level, user.IsPremium).Name,
		IsPremium: user.IsPremium,
	}, nil
}

// HabitRangeStats is one habit's activity inside the requested window.
type HabitRangeStats struct {
	HabitID       string `json:"habit_id"`
	Title         string `json:"title"`
	Icon          string `json:"icon"`
	Completions   int    `json:"completions"`
	CompletedDays int    `json:"completed_days"`
	CurrentStreak int    `json:"current_streak"`
	BestStreak    int    `json:"best_streak"`
}

type RangeStats struct {
	Start              string            `json:"start"`
	End                string            `json:"end"`
	Days               int               `json:"days"`
	TotalCompletions   int               `json:"total_completions"`
	TotalCompletedDays int               `json:"total_completed_days"`
	Habits             []HabitRangeStats `json:"habits"`
}

// Range aggregates completion activity over a date interval, clamped to
// the user's stats window ending today. Missing bounds default to that
// full window.
func (s *StatsService) Range(ctx context.Context, userID, start, end string) (*RangeStats, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today, _ := domain.ParseLocalDate(domain.FormatLocalDate(time.Now()))
	window := user.StatsWindow()

	rng := domain.DateRange{Start: today.AddDate(0, 0, -(window - 1)), End: today}
	if start != "" || end != "" {
		if start == "" {
			start = domain.FormatLocalDate(rng.Start)
		}
		if end == "" {
			end = domain.FormatLocalDate(today)
		}
		rng, err = domain.NewDateRange(start, end)
		if err != nil {
			return nil, err
		}
	}
	rng = rng.ClampToWindow(today, window)

	habits, err := s.loadHabits(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats := &RangeStats{
		Start:  domain.FormatLocalDate(rng.Start),
		End:    domain.FormatLocalDate(rng.End),
		Days:   rng.Days(),
		Habits: make([]HabitRangeStats, 0, len(habits)),
	}
	for _, h := range habits {
		hs := HabitRangeStats{
			HabitID:       h.ID,
			Title:         h.Title,
			Icon:          h.Icon,
			Completions:   h.CountCompletionsInRange(rng),
			CompletedDays: h.CountCompletedDaysInRange(rng),
			CurrentStreak: h.CurrentStreak,
			BestStreak:    h.BestStreak,
		}
		stats.TotalCompletions += hs.Completions
		stats.TotalCompletedDays += hs.CompletedDays
		stats.Habits = append(stats.Habits, hs)
	}
	return stats, nil
}

// HabitCalendar is one month of a habit laid out for the calendar
// widget: a Monday-first grid with zero padding plus the goal-met dates
// to highlight.
type HabitCalendar struct {
	Year           int      `json:"year"`
	Month          int      `json:"month"`
	Grid           []int    `json:"grid"`
	CompletedDates []string `json:"completed_dates"`
	CurrentStreak  int      `json:"current_streak"`
	BestStreak     int      `json:"best_streak"`
}

func (s *StatsService) Calendar(ctx context.Context, ownerID, habitID string, year int, month time.Month) (*HabitCalendar, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != ownerID && !habit.IsPublic() {
		return nil, domain.ErrHabitNotFound
	}

	events, err := s.completions.ListByHabit(ctx, habitID)
	if err != nil {
		return nil, err
	}
	habit.Completions = make([]domain.Completion, 0, len(events))
	for _, e := range events {
		habit.Completions = append(habit.Completions, domain.Completion{Date: e.Date, Count: e.Count})
	}

	return &HabitCalendar{
		Year:           year,
		Month:          int(month),
		Grid:           domain.MonthGrid(year, month),
		CompletedDates: habit.CompletedDates(),
		CurrentStreak:  habit.CurrentStreak,
		BestStreak:     habit.BestStreak,
	}, nil
}
