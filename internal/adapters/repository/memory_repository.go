package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

// In-memory implementations of the repository interfaces, used for
// local development without a database and by the end-to-end tests.

type InMemoryHabitRepository struct {
	store      map[string]*domain.Habit
	categories []domain.Category

	mu sync.RWMutex
}

func NewInMemoryHabitRepository() *InMemoryHabitRepository {
	return &InMemoryHabitRepository{
		store: make(map[string]*domain.Habit),
		categories: []domain.Category{
			{ID: 1, Name: "Health"},
			{ID: 2, Name: "Work"},
			{ID: 3, Name: "Learning"},
			{ID: 4, Name: "Relationships"},
			{ID: 5, Name: "Finance"},
			{ID: 6, Name: "Personal Growth"},
		},
	}
}

func (r *InMemoryHabitRepository) categoryName(id int64) string {
	for _, c := range r.categories {
		if c.ID == id {
			return c.Name
		}
	}
	return ""
}

func (r *InMemoryHabitRepository) Create(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *habit
	clone.CategoryName = r.categoryName(clone.CategoryID)
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habit, ok := r.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *habit
	return &clone, nil
}

func (r *InMemoryHabitRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.OwnerID == ownerID {
			clone := *h
			habits = append(habits, &clone)
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.Before(habits[j].CreatedAt)
	})
	return habits, nil
}

func (r *InMemoryHabitRepository) ListPublic(ctx context.Context, search string, limit int) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if !h.IsPublic() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(h.Title), strings.ToLower(search)) {
			continue
		}
		clone := *h
		habits = append(habits, &clone)
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	if len(habits) > limit {
		habits = habits[:limit]
	}
	return habits, nil
}

func (r *InMemoryHabitRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.Habit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	habits := []*domain.Habit{}
	for _, h := range r.store {
		if h.SourceHabitID == sourceID {
			clone := *h
			habits = append(habits, &clone)
		}
	}
	sort.Slice(habits, func(i, j int) bool {
		return habits[i].CreatedAt.After(habits[j].CreatedAt)
	})
	return habits, nil
}

func (r *InMemoryHabitRepository) Update(ctx context.Context, habit *domain.Habit) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	clone := *habit
	clone.CategoryName = r.categoryName(clone.CategoryID)
	r.store[habit.ID] = &clone
	return nil
}

func (r *InMemoryHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	habit, ok := r.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	habit.CurrentStreak = current
	habit.BestStreak = best
	return nil
}

func (r *InMemoryHabitRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(r.store, id)
	return nil
}

func (r *InMemoryHabitRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Category{}, r.categories...), nil
}

type InMemoryCompletionRepository struct {
	store  map[string]*domain.CompletionEvent
	habits *InMemoryHabitRepository

	mu sync.RWMutex
}

func NewInMemoryCompletionRepository(habits *InMemoryHabitRepository) *InMemoryCompletionRepository {
	return &InMemoryCompletionRepository{
		store:  make(map[string]*domain.CompletionEvent),
		habits: habits,
	}
}

func (r *InMemoryCompletionRepository) key(habitID, date string) string {
	return habitID + "|" + date
}

func (r *InMemoryCompletionRepository) Upsert(ctx context.Context, event *domain.CompletionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *event
	r.store[r.key(event.HabitID, event.Date)] = &clone
	return nil
}

func (r *InMemoryCompletionRepository) GetForDate(ctx context.Context, habitID, isoDate string) (*domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	event, ok := r.store[r.key(habitID, isoDate)]
	if !ok {
		return nil, domain.ErrCompletionNotFound
	}
	clone := *event
	return &clone, nil
}

func (r *InMemoryCompletionRepository) ListByHabit(ctx context.Context, habitID string) ([]domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []domain.CompletionEvent{}
	for _, e := range r.store {
		if e.HabitID == habitID {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}

func (r *InMemoryCompletionRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.CompletionEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	events := []domain.CompletionEvent{}
	for _, e := range r.store {
		if e.OwnerID == ownerID {
			events = append(events, *e)
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Date < events[j].Date })
	return events, nil
}

func (r *InMemoryCompletionRepository) CountGoalMetForDate(ctx context.Context, ownerID, isoDate string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, e := range r.store {
		if e.OwnerID != ownerID || e.Date != isoDate {
			continue
		}
		goal := 1
		if habit, err := r.habits.GetByID(ctx, e.HabitID); err == nil {
			goal = habit.EffectiveGoal()
		}
		if e.Count >= goal {
			count++
		}
	}
	return count, nil
}

type InMemoryUserRepository struct {
	store map[string]*domain.User

	mu sync.RWMutex
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{store: make(map[string]*domain.User)}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	clone := *user
	r.store[user.ID] = &clone
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *InMemoryUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.store {
		if u.TelegramID == telegramID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *InMemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	r.store[user.ID] = &clone
	return nil
}

// InMemoryLeaderboardRepository ranks the in-memory users by XP.
type InMemoryLeaderboardRepository struct {
	users *InMemoryUserRepository
}

func NewInMemoryLeaderboardRepository(users *InMemoryUserRepository) *InMemoryLeaderboardRepository {
	return &InMemoryLeaderboardRepository{users: users}
}

func (r *InMemoryLeaderboardRepository) ranked() []domain.LeaderboardEntry {
	r.users.mu.RLock()
	all := make([]*domain.User, 0, len(r.users.store))
	for _, u := range r.users.store {
		all = append(all, u)
	}
	r.users.mu.RUnlock()

	sort.Slice(all, func(i, j int) bool {
		if all[i].XP != all[j].XP {
			return all[i].XP > all[j].XP
		}
		return all[i].CreatedAt.Before(all[j].CreatedAt)
	})

	entries := make([]domain.LeaderboardEntry, 0, len(all))
	for i, u := range all {
		entries = append(entries, u.AsLeaderboardEntry(i+1))
	}
	return entries
}

func (r *InMemoryLeaderboardRepository) Top(ctx context.Context, rng string, limit int) ([]domain.LeaderboardEntry, error) {
	entries := r.ranked()
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *InMemoryLeaderboardRepository) ViewerEntry(ctx context.Context, rng, userID string) (*domain.LeaderboardEntry, error) {
	for _, e := range r.ranked() {
		if e.ID == userID {
			entry := e
			return &entry, nil
		}
	}
	return nil, domain.ErrUserNotFound
}
