package services

import (
	"context"
	"sync"
	"time"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

// Snapshot is everything the Mini App needs on launch, assembled in one
// round trip.
type Snapshot struct {
	User        domain.UserProfile   `json:"user"`
	Habits      []domain.HabitRecord `json:"habits"`
	Categories  []domain.Category    `json:"categories"`
	Products    []domain.Product     `json:"products"`
	Titles      []domain.TitleStatus `json:"titles"`
	Quests      []domain.QuestStatus `json:"quests"`
	Balance     *BalanceResult       `json:"balance"`
	Leaderboard *domain.Leaderboard  `json:"leaderboard"`
	GeneratedAt string               `json:"generated_at"`
}

type bootstrapCall struct {
	done chan struct{}
	snap *Snapshot
	err  error
}

// BootstrapService assembles launch snapshots. Concurrent requests for
// the same user share a single in-flight computation instead of fanning
// out duplicate repository work, which matters when the Mini App
// re-mounts during Telegram's viewport resize events.
type BootstrapService struct {
	habits      *HabitService
	stats       *StatsService
	leaderboard *LeaderboardService
	users       domain.UserRepository
	categories  domain.HabitRepository

	mu       sync.Mutex
	inflight map[string]*bootstrapCall
}

func NewBootstrapService(habits *HabitService, stats *StatsService, leaderboard *LeaderboardService, users domain.UserRepository, categories domain.HabitRepository) *BootstrapService {
	return &BootstrapService{
		habits:      habits,
		stats:       stats,
		leaderboard: leaderboard,
		users:       users,
		categories:  categories,
		inflight:    make(map[string]*bootstrapCall),
	}
}

func (s *BootstrapService) Snapshot(ctx context.Context, userID string) (*Snapshot, error) {
	s.mu.Lock()
	if call, ok := s.inflight[userID]; ok {
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.snap, call.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	call := &bootstrapCall{done: make(chan struct{})}
	s.inflight[userID] = call
	s.mu.Unlock()

	// The shared computation must not die with whichever request
	// happened to start it.
	call.snap, call.err = s.build(context.WithoutCancel(ctx), userID)

	s.mu.Lock()
	delete(s.inflight, userID)
	s.mu.Unlock()
	close(call.done)

	return call.snap, call.err
}

func (s *BootstrapService) build(ctx context.Context, userID string) (*Snapshot, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := domain.FormatLocalDate(time.Now())

	habits, err := s.habits.ListByOwner(ctx, userID, "")
	if err != nil {
		return nil, err
	}
	records := make([]domain.HabitRecord, 0, len(habits))
	for _, h := range habits {
		records = append(records, h.ToRecord(today))
	}

	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	balance, err := s.stats.Balance(ctx, userID, userID)
	if err != nil {
		return nil, err
	}

	board, err := s.leaderboard.Get(ctx, userID, "", 0)
	if err != nil {
		return nil, err
	}

	// Titles and quests are derived fresh on every launch, like the
	// level itself.
	user.Title = domain.TitleForLevel(user.Level, user.IsPremium).Name
	sig := domain.QuestSignals{Level: user.Level}
	for _, h := range habits {
		sig.HabitCount++
		if h.IsPublic() {
			sig.PublicHabitCount++
		}
		if h.SourceHabitID != "" {
			sig.JoinedPublic = true
		}
		if h.BestStreak > sig.BestStreak {
			sig.BestStreak = h.BestStreak
		}
	}
	best, runnerUp := 0, 0
	for _, item := range balance.Wheel.Items {
		if item.Value >= best {
			runnerUp = best
			best = item.Value
		} else if item.Value > runnerUp {
			runnerUp = item.Value
		}
	}
	sig.BalanceRunnerUp = runnerUp

	return &Snapshot{
		User:        user.Profile(),
		Habits:      records,
		Categories:  categories,
		Products:    domain.Products(),
		Titles:      domain.TitleStatuses(user.Level, user.IsPremium),
		Quests:      domain.EvaluateQuests(sig),
		Balance:     balance,
		Leaderboard: board,
		GeneratedAt: today,
	}, nil
}
