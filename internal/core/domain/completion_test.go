package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

func mustRange(t *testing.T, start, end string) domain.DateRange {
	t.Helper()
	r, err := domain.NewDateRange(start, end)
	require.NoError(t, err)
	return r
}

func TestHabit_IsDayComplete(t *testing.T) {
	habit := &domain.Habit{
		Goal: 3,
		Completions: []domain.Completion{
			{Date: "2024-01-01", Count: 2},
			{Date: "2024-01-02", Count: 3},
			{Date: "2024-01-03", Count: 5},
		},
	}

	t.Run("Success: Goal is a threshold, not an exact match", func(t *testing.T) {
		assert.False(t, habit.IsDayComplete("2024-01-01"), "count 2 below goal 3")
		assert.True(t, habit.IsDayComplete("2024-01-02"), "count equals goal")
		assert.True(t, habit.IsDayComplete("2024-01-03"), "overshooting still completes")
	})

	t.Run("Edge Case: Day without an entry is incomplete", func(t *testing.T) {
		assert.False(t, habit.IsDayComplete("2024-01-04"))
	})

	t.Run("Edge Case: Zero goal is treated as one", func(t *testing.T) {
		h := &domain.Habit{Goal: 0, Completions: []domain.Completion{{Date: "2024-01-01", Count: 1}}}
		assert.True(t, h.IsDayComplete("2024-01-01"))
	})
}

func TestHabit_CountCompletionsInRange(t *testing.T) {
	habit := &domain.Habit{
		Goal: 2,
		Completions: []domain.Completion{
			{Date: "2024-01-01", Count: 2},
			{Date: "2024-01-03", Count: 1},
			{Date: "2024-01-10", Count: 4},
		},
	}

	t.Run("Success: Sums raw counts inside inclusive bounds", func(t *testing.T) {
		assert.Equal(t, 3, habit.CountCompletionsInRange(mustRange(t, "2024-01-01", "2024-01-03")))
		assert.Equal(t, 7, habit.CountCompletionsInRange(mustRange(t, "2024-01-01", "2024-01-31")))
	})

	t.Run("Edge Case: Inverted range returns zero", func(t *testing.T) {
		assert.Equal(t, 0, habit.CountCompletionsInRange(mustRange(t, "2024-01-10", "2024-01-01")))
	})

	t.Run("Edge Case: No completions returns zero", func(t *testing.T) {
		empty := &domain.Habit{Goal: 1}
		assert.Equal(t, 0, empty.CountCompletionsInRange(mustRange(t, "2024-01-01", "2024-01-31")))
	})

	t.Run("Edge Case: Unparseable entry dates are skipped", func(t *testing.T) {
		h := &domain.Habit{Completions: []domain.Completion{
			{Date: "bogus", Count: 9},
			{Date: "2024-01-02", Count: 1},
		}}
		assert.Equal(t, 1, h.CountCompletionsInRange(mustRange(t, "2024-01-01", "2024-01-31")))
	})
}

func TestHabit_CountCompletedDaysInRange(t *testing.T) {
	habit := &domain.Habit{
		Goal: 2,
		Completions: []domain.Completion{
			{Date: "2024-01-01", Count: 2},
			{Date: "2024-01-02", Count: 1},
			{Date: "2024-01-03", Count: 6},
		},
	}

	t.Run("Success: Counts goal-met days once each regardless of overshoot", func(t *testing.T) {
		assert.Equal(t, 2, habit.CountCompletedDaysInRange(mustRange(t, "2024-01-01", "2024-01-31")))
	})

	t.Run("Success: Distinct from the raw completion total", func(t *testing.T) {
		r := mustRange(t, "2024-01-01", "2024-01-31")
		assert.Equal(t, 9, habit.CountCompletionsInRange(r))
		assert.Equal(t, 2, habit.CountCompletedDaysInRange(r))
	})

	t.Run("Edge Case: Inverted range returns zero", func(t *testing.T) {
		assert.Equal(t, 0, habit.CountCompletedDaysInRange(mustRange(t, "2024-02-01", "2024-01-01")))
	})
}
