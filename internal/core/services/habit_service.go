package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
	"github.com/itskasymzhomartsanzhar/routr/internal/core/workers"
)

type HabitService struct {
	habits      domain.HabitRepository
	completions domain.CompletionRepository
	users       domain.UserRepository
	worker      *workers.StreakWorker

	// pending serializes completion writes per habit: a second toggle
	// for the same habit while one is outstanding is refused, while
	// different habits proceed concurrently.
	pendingMu sync.Mutex
	pending   map[string]struct{}
}

func NewHabitService(habits domain.HabitRepository, completions domain.CompletionRepository, users domain.UserRepository, worker *workers.StreakWorker) *HabitService {
	return &HabitService{
		habits:      habits,
		completions: completions,
		users:       users,
		worker:      worker,
		pending:     make(map[string]struct{}),
	}
}

// attachCompletions hydrates the habit's completion history and total.
func (s *HabitService) attachCompletions(ctx context.Context, habit *domain.Habit) error {
	events, err := s.completions.ListByHabit(ctx, habit.ID)
	if err != nil {
		return err
	}
	habit.Completions = make([]domain.Completion, 0, len(events))
	habit.TotalCompletions = 0
	for _, e := range events {
		habit.Completions = append(habit.Completions, domain.Completion{Date: e.Date, Count: e.Count})
		habit.TotalCompletions += e.Count
	}
	return nil
}

func (s *HabitService) Create(ctx context.Context, ownerID string, form domain.HabitForm) (*domain.Habit, error) {
	habit, err := domain.NewHabit(ownerID, form)
	if err != nil {
		return nil, err
	}

	if err := s.habits.Create(ctx, habit); err != nil {
		return nil, err
	}

	// Re-read so joined fields (category label) come back filled.
	return s.habits.GetByID(ctx, habit.ID)
}

func (s *HabitService) Get(ctx context.Context, ownerID, id string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != ownerID && !habit.IsPublic() {
		return nil, domain.ErrHabitNotFound
	}
	if err := s.attachCompletions(ctx, habit); err != nil {
		return nil, err
	}
	return habit, nil
}

// ListByOwner returns the user's habits with completion history
// attached, optionally filtered to those scheduled on the given date.
func (s *HabitService) ListByOwner(ctx context.Context, ownerID, isoDate string) ([]*domain.Habit, error) {
	habits, err := s.habits.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	events, err := s.completions.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byHabit := make(map[string][]domain.Completion)
	totals := make(map[string]int)
	for _, e := range events {
		byHabit[e.HabitID] = append(byHabit[e.HabitID], domain.Completion{Date: e.Date, Count: e.Count})
		totals[e.HabitID] += e.Count
	}

	filtered := make([]*domain.Habit, 0, len(habits))
	for _, h := range habits {
		if isoDate != "" && !h.ScheduledOn(isoDate) {
			continue
		}
		h.Completions = byHabit[h.ID]
		if h.Completions == nil {
			h.Completions = []domain.Completion{}
		}
		h.TotalCompletions = totals[h.ID]
		filtered = append(filtered, h)
	}
	return filtered, nil
}

func (s *HabitService) ListPublic(ctx context.Context, search string, limit int) ([]*domain.Habit, error) {
	if limit < 1 || limit > 50 {
		limit = 20
	}
	return s.habits.ListPublic(ctx, strings.TrimSpace(search), limit)
}

func (s *HabitService) Update(ctx context.Context, ownerID, id string, form domain.HabitForm) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != ownerID {
		return nil, domain.ErrHabitNotFound
	}

	if err := habit.Update(form); err != nil {
		return nil, err
	}
	if err := s.habits.Update(ctx, habit); err != nil {
		return nil, err
	}
	return s.Get(ctx, ownerID, id)
}

func (s *HabitService) Delete(ctx context.Context, ownerID, id string) error {
	habit, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if habit.OwnerID != ownerID {
		return domain.ErrHabitNotFound
	}
	return s.habits.Delete(ctx, id)
}

type CompleteInput struct {
	OwnerID string
	HabitID string
	Count   int
	Date    string
}

type UserProgress struct {
	XP    int    `json:"xp"`
	Level int    `json:"level"`
	Title string `json:"title"`
}

type CompleteResult struct {
	Habit     *domain.Habit
	XPAwarded int
	Progress  UserProgress
}

func (s *HabitService) beginCompletion(habitID string) bool {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	if _, busy := s.pending[habitID]; busy {
		return false
	}
	s.pending[habitID] = struct{}{}
	return true
}

func (s *HabitService) endCompletion(habitID string) {
	s.pendingMu.Lock()
	defer s.pendingMu.Unlock()
	delete(s.pending, habitID)
}

// Complete applies a completion increment for one day. The stored count
// never exceeds the goal, future dates and unscheduled weekdays are
// refused, and crossing the goal threshold awards XP scaled by the
// user's streak and capped per day. The returned habit record is the
// authoritative post-write state.
func (s *HabitService) Complete(ctx context.Context, input CompleteInput) (*CompleteResult, error) {
	today := domain.FormatLocalDate(time.Now())

	date := input.Date
	if date == "" {
		date = today
	}
	if _, err := domain.ParseLocalDate(date); err != nil {
		return nil, err
	}
	// ISO dates compare correctly as strings.
	if date > today {
		return nil, domain.ErrFutureDate
	}

	habit, err := s.habits.GetByID(ctx, input.HabitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != input.OwnerID {
		return nil, domain.ErrHabitNotFound
	}
	if !habit.ScheduledOn(date) {
		return nil, domain.ErrHabitNotScheduled
	}

	if !s.beginCompletion(habit.ID) {
		return nil, domain.ErrCompletionPending
	}
	defer s.endCompletion(habit.ID)

	increment := input.Count
	if increment < 1 {
		increment = 1
	}

	prev := 0
	existing, err := s.completions.GetForDate(ctx, habit.ID, date)
	if err == nil {
		prev = existing.Count
	} else if !errors.Is(err, domain.ErrCompletionNotFound) {
		return nil, err
	}

	goal := habit.EffectiveGoal()
	newCount := prev + increment
	if newCount > goal {
		newCount = goal
	}

	if newCount > prev {
		now := time.Now().UTC()
		event := &domain.CompletionEvent{
			ID:        uuid.New().String(),
			HabitID:   habit.ID,
			OwnerID:   habit.OwnerID,
			Date:      date,
			Count:     newCount,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if existing != nil {
			event.ID = existing.ID
			event.CreatedAt = existing.CreatedAt
		}
		if err := s.completions.Upsert(ctx, event); err != nil {
			return nil, err
		}
	}

	user, err := s.users.GetByID(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}

	awarded := 0
	if prev < goal && newCount >= goal {
		awarded, err = s.awardCompletionXP(ctx, user, date)
		if err != nil {
			return nil, err
		}
	}

	s.worker.Enqueue(habit.ID)

	if err := s.attachCompletions(ctx, habit); err != nil {
		return nil, err
	}

	return &CompleteResult{
		Habit:     habit,
		XPAwarded: awarded,
		Progress:  UserProgress{XP: user.XP, Level: user.Level, Title: user.Title},
	}, nil
}

// awardCompletionXP grants XP for a newly goal-met day. The streak
// multiplier follows the user's daily chain: a calendar day counts when
// any of their habits met its goal on that day.
func (s *HabitService) awardCompletionXP(ctx context.Context, user *domain.User, date string) (int, error) {
	habits, err := s.habits.ListByOwner(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	goals := make(map[string]int, len(habits))
	for _, h := range habits {
		goals[h.ID] = h.EffectiveGoal()
	}

	events, err := s.completions.ListByOwner(ctx, user.ID)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool)
	var goalMet []string
	for _, e := range events {
		goal, tracked := goals[e.HabitID]
		if !tracked || e.Count < goal || seen[e.Date] {
			continue
		}
		seen[e.Date] = true
		goalMet = append(goalMet, e.Date)
	}

	anchor, _ := domain.ParseLocalDate(date)
	streak, _ := domain.CalculateStreaks(goalMet, anchor)

	raw := int(float64(domain.XPBase)*domain.StreakMultiplier(streak) + 0.5)

	habitsToday, err := s.completions.CountGoalMetForDate(ctx, user.ID, date)
	if err != nil {
		return 0, err
	}

	awarded := user.AwardXP(raw, date, habitsToday)
	if awarded > 0 {
		if err := s.users.Update(ctx, user); err != nil {
			return 0, err
		}
	}
	return awarded, nil
}

// Copy clones a public habit into the user's own list. Copying the same
// source twice is reported, not repeated.
func (s *HabitService) Copy(ctx context.Context, userID, habitID string) (*domain.Habit, error) {
	source, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}

	mine, err := s.habits.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, h := range mine {
		if h.SourceHabitID == source.ID {
			return nil, domain.ErrHabitAlreadyCopied
		}
	}

	cp, err := source.CopyFor(userID)
	if err != nil {
		return nil, err
	}
	if err := s.habits.Create(ctx, cp); err != nil {
		return nil, err
	}
	return s.habits.GetByID(ctx, cp.ID)
}

// Participant is one member of a shared habit: the author plus everyone
// who copied it.
type Participant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	IsPremium bool   `json:"is_premium"`
	IsAuthor  bool   `json:"is_author"`
}

type ParticipantList struct {
	Total int           `json:"total"`
	Items []Participant `json:"items"`
}

// resolveSource follows a copy back to the habit it was made from.
func (s *HabitService) resolveSource(ctx context.Context, habit *domain.Habit) (*domain.Habit, error) {
	if habit.SourceHabitID == "" {
		return habit, nil
	}
	return s.habits.GetByID(ctx, habit.SourceHabitID)
}

// Participants lists everyone on a shared habit: the author first, then
// the copiers. A private habit nobody copied is not social, so the list
// is empty rather than an error.
func (s *HabitService) Participants(ctx context.Context, viewerID, habitID string) (*ParticipantList, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != viewerID && !habit.IsPublic() {
		return nil, domain.ErrHabitNotFound
	}

	source, err := s.resolveSource(ctx, habit)
	if err != nil {
		if errors.Is(err, domain.ErrHabitNotFound) {
			return &ParticipantList{Items: []Participant{}}, nil
		}
		return nil, err
	}

	copies, err := s.habits.ListBySource(ctx, source.ID)
	if err != nil {
		return nil, err
	}
	if !source.IsPublic() && len(copies) == 0 && habit.SourceHabitID == "" {
		return &ParticipantList{Items: []Participant{}}, nil
	}

	list := &ParticipantList{Items: make([]Participant, 0, len(copies)+1)}
	if author, err := s.users.GetByID(ctx, source.OwnerID); err == nil {
		list.Items = append(list.Items, Participant{
			ID:        author.ID,
			Name:      author.DisplayName(),
			Avatar:    author.PhotoURL,
			IsPremium: author.IsPremium,
			IsAuthor:  true,
		})
	}
	for _, cp := range copies {
		member, err := s.users.GetByID(ctx, cp.OwnerID)
		if err != nil {
			continue
		}
		list.Items = append(list.Items, Participant{
			ID:        member.ID,
			Name:      member.DisplayName(),
			Avatar:    member.PhotoURL,
			IsPremium: member.IsPremium,
		})
	}
	list.Total = len(list.Items)
	return list, nil
}

// ParticipantStats returns one participant's copy of a shared habit
// with its completion history, for the member detail sheet.
func (s *HabitService) ParticipantStats(ctx context.Context, viewerID, habitID, userID string) (*domain.Habit, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return nil, err
	}
	if habit.OwnerID != viewerID && !habit.IsPublic() {
		return nil, domain.ErrHabitNotFound
	}

	source, err := s.resolveSource(ctx, habit)
	if err != nil {
		return nil, err
	}

	target := source
	if userID != source.OwnerID {
		copies, err := s.habits.ListBySource(ctx, source.ID)
		if err != nil {
			return nil, err
		}
		target = nil
		for _, cp := range copies {
			if cp.OwnerID == userID {
				target = cp
				break
			}
		}
		if target == nil {
			return nil, domain.ErrParticipantNotFound
		}
	}

	if err := s.attachCompletions(ctx, target); err != nil {
		return nil, err
	}
	return target, nil
}

// Resolve maps a deep-link start payload back to the public habit it
// advertises. Payloads pointing at private or deleted habits resolve
// to not-found so the payload leaks nothing about them.
func (s *HabitService) Resolve(ctx context.Context, payload string) (*domain.Habit, error) {
	id, err := domain.DecodeSharePayload(payload)
	if err != nil {
		return nil, err
	}
	habit, err := s.habits.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !habit.IsPublic() {
		return nil, domain.ErrHabitNotFound
	}
	return habit, nil
}

// Share returns the deep-link start payload for a habit the user owns.
func (s *HabitService) Share(ctx context.Context, ownerID, habitID string) (string, error) {
	habit, err := s.habits.GetByID(ctx, habitID)
	if err != nil {
		return "", err
	}
	if habit.OwnerID != ownerID {
		return "", domain.ErrHabitNotFound
	}
	return domain.EncodeSharePayload(habit.ID), nil
}
