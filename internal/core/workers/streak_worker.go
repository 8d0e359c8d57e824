package workers

import (
	"context"
	"log"
	"time"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

type HabitRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Habit, error)
	UpdateStreaks(ctx context.Context, id string, current, best int) error
}

type CompletionRepository interface {
	ListByHabit(ctx context.Context, habitID string) ([]domain.CompletionEvent, error)
}

type StreakJob struct {
	HabitID string
}

// StreakWorker recomputes a habit's streak fields in the background
// after completion writes, so the write path never pays for a history
// scan.
type StreakWorker struct {
	habitRepo      HabitRepository
	completionRepo CompletionRepository
	jobs           chan StreakJob
}

func NewStreakWorker(hRepo HabitRepository, cRepo CompletionRepository) *StreakWorker {
	return &StreakWorker{
		habitRepo:      hRepo,
		completionRepo: cRepo,
		jobs:           make(chan StreakJob, 100),
	}
}

func (w *StreakWorker) Start(ctx context.Context) {
	go func() {
		log.Println("Streak worker started in background...")
		for {
			select {
			case job := <-w.jobs:
				w.processJob(ctx, job)
			case <-ctx.Done():
				log.Println("Streak worker shutting down...")
				return
			}
		}
	}()
}

func (w *StreakWorker) Enqueue(habitID string) {
	select {
	case w.jobs <- StreakJob{HabitID: habitID}:
	default:
		log.Printf("Streak worker queue full! Dropping job for habit %s", habitID)
	}
}

func (w *StreakWorker) processJob(ctx context.Context, job StreakJob) {
	habit, err := w.habitRepo.GetByID(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker error fetching habit %s: %v", job.HabitID, err)
		return
	}

	events, err := w.completionRepo.ListByHabit(ctx, job.HabitID)
	if err != nil {
		log.Printf("Worker error fetching completions for %s: %v", job.HabitID, err)
		return
	}

	goal := habit.EffectiveGoal()
	var goalMetDates []string
	for _, e := range events {
		if e.Count >= goal {
			goalMetDates = append(goalMetDates, e.Date)
		}
	}

	// Anchor on the server-local calendar day, the same convention the
	// write path uses when it stamps completion dates.
	current, best := domain.CalculateStreaks(goalMetDates, time.Now())

	if habit.CurrentStreak != current || habit.BestStreak != best {
		if err := w.habitRepo.UpdateStreaks(ctx, habit.ID, current, best); err != nil {
			log.Printf("Worker failed to update streaks for %s: %v", habit.ID, err)
		} else {
			log.Printf("Streaks updated for %q: current=%d, best=%d", habit.Title, current, best)
		}
	}
}
