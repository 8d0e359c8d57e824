package domain

import (
	"context"
	"errors"
	"time"
)

var ErrCompletionNotFound = errors.New("completion not found")

// CompletionEvent is the persisted per-day tally for a habit.
type CompletionEvent struct {
	ID      string `json:"id" db:"id"`
	HabitID string `json:"habit_id" db:"habit_id"`
	OwnerID string `json:"owner_id" db:"owner_id"`
	Date    string `json:"date" db:"date"`
	Count   int    `json:"count" db:"count"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type HabitRepository interface {
	Create(ctx context.Context, habit *Habit) error
	GetByID(ctx context.Context, id string) (*Habit, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*Habit, error)
	ListPublic(ctx context.Context, search string, limit int) ([]*Habit, error)
	// ListBySource returns the copies made from a source habit, newest
	// first.
	ListBySource(ctx context.Context, sourceID string) ([]*Habit, error)
	Update(ctx context.Context, habit *Habit) error
	UpdateStreaks(ctx context.Context, id string, current, best int) error
	Delete(ctx context.Context, id string) error
	ListCategories(ctx context.Context) ([]Category, error)
}

type CompletionRepository interface {
	// Upsert inserts or replaces the tally for (habit, date) with the
	// authoritative new count.
	Upsert(ctx context.Context, event *CompletionEvent) error
	GetForDate(ctx context.Context, habitID, isoDate string) (*CompletionEvent, error)
	ListByHabit(ctx context.Context, habitID string) ([]CompletionEvent, error)
	ListByOwner(ctx context.Context, ownerID string) ([]CompletionEvent, error)
	// CountGoalMetForDate counts the owner's habits whose tally reached
	// the goal on the given date, used for the daily XP cap.
	CountGoalMetForDate(ctx context.Context, ownerID, isoDate string) (int, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	Update(ctx context.Context, user *User) error
}

// LeaderboardRepository serves ranked XP queries. Implementations may
// cache: the board tolerates a few minutes of staleness.
type LeaderboardRepository interface {
	Top(ctx context.Context, rng string, limit int) ([]LeaderboardEntry, error)
	ViewerEntry(ctx context.Context, rng, userID string) (*LeaderboardEntry, error)
}
