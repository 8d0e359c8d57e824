package services_test

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

type MockHabitRepo struct {
	mu               sync.Mutex
	store            map[string]*domain.Habit
	categories       []domain.Category
	listByOwnerCalls int
	simulateError    error
}

func NewMockHabitRepo() *MockHabitRepo {
	return &MockHabitRepo{store: make(map[string]*domain.Habit)}
}

func (m *MockHabitRepo) Create(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok {
		return nil, domain.ErrHabitNotFound
	}
	clone := *h
	return &clone, nil
}

func (m *MockHabitRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listByOwnerCalls++
	list := []*domain.Habit{}
	for _, h := range m.store {
		if h.OwnerID == ownerID {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MockHabitRepo) ListPublic(ctx context.Context, search string, limit int) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []*domain.Habit{}
	for _, h := range m.store {
		if !h.IsPublic() {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(h.Title), strings.ToLower(search)) {
			continue
		}
		clone := *h
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MockHabitRepo) ListBySource(ctx context.Context, sourceID string) ([]*domain.Habit, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	list := []*domain.Habit{}
	for _, h := range m.store {
		if h.SourceHabitID == sourceID {
			clone := *h
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (m *MockHabitRepo) Update(ctx context.Context, habit *domain.Habit) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[habit.ID]; !ok {
		return domain.ErrHabitNotFound
	}
	clone := *habit
	m.store[habit.ID] = &clone
	return nil
}

func (m *MockHabitRepo) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok {
		return domain.ErrHabitNotFound
	}
	h.CurrentStreak = current
	h.BestStreak = best
	return nil
}

func (m *MockHabitRepo) Delete(ctx context.Context, id string) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrHabitNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *MockHabitRepo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	return append([]domain.Category{}, m.categories...), nil
}

type MockCompletionRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.CompletionEvent
	upsertGate    chan struct{}
	upsertEntered chan struct{}
	simulateError error
}

func NewMockCompletionRepo() *MockCompletionRepo {
	return &MockCompletionRepo{store: make(map[string]*domain.CompletionEvent)}
}

func completionKey(habitID, date string) string {
	return habitID + "|" + date
}

func (m *MockCompletionRepo) Upsert(ctx context.Context, event *domain.CompletionEvent) error {
	if m.upsertEntered != nil {
		m.upsertEntered <- struct{}{}
	}
	if m.upsertGate != nil {
		<-m.upsertGate
	}
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	m.store[completionKey(event.HabitID, event.Date)] = &clone
	return nil
}

func (m *MockCompletionRepo) GetForDate(ctx context.Context, habitID, isoDate string) (*domain.CompletionEvent, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.store[completionKey(habitID, isoDate)]
	if !ok {
		return nil, domain.ErrCompletionNotFound
	}
	clone := *e
	return &clone, nil
}

func (m *MockCompletionRepo) ListByHabit(ctx context.Context, habitID string) ([]domain.CompletionEvent, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.CompletionEvent
	for _, e := range m.store {
		if e.HabitID == habitID {
			list = append(list, *e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list, nil
}

func (m *MockCompletionRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.CompletionEvent, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var list []domain.CompletionEvent
	for _, e := range m.store {
		if e.OwnerID == ownerID {
			list = append(list, *e)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Date < list[j].Date })
	return list, nil
}

func (m *MockCompletionRepo) CountGoalMetForDate(ctx context.Context, ownerID, isoDate string) (int, error) {
	// The mock has no habit goals, so every recorded tally for the date
	// counts. Tests that need the XP cap seed counts at the goal.
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, e := range m.store {
		if e.OwnerID == ownerID && e.Date == isoDate {
			count++
		}
	}
	return count, nil
}

type MockUserRepo struct {
	mu            sync.Mutex
	store         map[string]*domain.User
	getGate       chan struct{}
	getEntered    chan struct{}
	simulateError error
}

func NewMockUserRepo() *MockUserRepo {
	return &MockUserRepo{store: make(map[string]*domain.User)}
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *user
	m.store[user.ID] = &clone
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if m.getEntered != nil {
		m.getEntered <- struct{}{}
	}
	if m.getGate != nil {
		<-m.getGate
	}
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (m *MockUserRepo) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.store {
		if u.TelegramID == telegramID {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	if m.simulateError != nil {
		return m.simulateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[user.ID]; !ok {
		return domain.ErrUserNotFound
	}
	clone := *user
	m.store[user.ID] = &clone
	return nil
}

type MockBoardRepo struct {
	top           []domain.LeaderboardEntry
	viewer        *domain.LeaderboardEntry
	viewerErr     error
	simulateError error
}

func (m *MockBoardRepo) Top(ctx context.Context, rng string, limit int) ([]domain.LeaderboardEntry, error) {
	if m.simulateError != nil {
		return nil, m.simulateError
	}
	top := append([]domain.LeaderboardEntry{}, m.top...)
	if len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}

func (m *MockBoardRepo) ViewerEntry(ctx context.Context, rng, userID string) (*domain.LeaderboardEntry, error) {
	if m.viewerErr != nil {
		return nil, m.viewerErr
	}
	if m.viewer == nil {
		return nil, domain.ErrUserNotFound
	}
	clone := *m.viewer
	return &clone, nil
}
