package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

func TestFormatLocalDate(t *testing.T) {
	t.Run("Success: Formats zero-padded local date", func(t *testing.T) {
		d := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
		assert.Equal(t, "2024-01-05", domain.FormatLocalDate(d))
	})

	t.Run("Success: Does not shift across midnight for far-west zones", func(t *testing.T) {
		// 2024-01-05 00:30 at UTC-11 is 2024-01-05 11:30 UTC; a naive
		// UTC conversion keeps the day here, but the inverse case below
		// is where it breaks.
		west := time.FixedZone("WEST", -11*3600)
		d := time.Date(2024, 1, 5, 0, 30, 0, 0, west)
		assert.Equal(t, "2024-01-05", domain.FormatLocalDate(d))
		assert.NotEqual(t, domain.FormatLocalDate(d.UTC()), domain.FormatLocalDate(d),
			"UTC conversion would have moved this instant to the next day")
	})

	t.Run("Success: Does not shift for far-east zones late at night", func(t *testing.T) {
		east := time.FixedZone("EAST", 13*3600)
		d := time.Date(2024, 1, 5, 23, 30, 0, 0, east)
		assert.Equal(t, "2024-01-05", domain.FormatLocalDate(d))
	})
}

func TestParseLocalDate(t *testing.T) {
	t.Run("Success: Strict YYYY-MM-DD", func(t *testing.T) {
		d, err := domain.ParseLocalDate("2024-02-29")
		require.NoError(t, err)
		assert.Equal(t, 2024, d.Year())
		assert.Equal(t, time.February, d.Month())
		assert.Equal(t, 29, d.Day())
	})

	t.Run("Error: Malformed strings", func(t *testing.T) {
		for _, input := range []string{"", "2024-1-5", "05-01-2024", "2024/01/05", "not-a-date", "2023-02-29"} {
			_, err := domain.ParseLocalDate(input)
			assert.ErrorIs(t, err, domain.ErrInvalidDate, "input %q", input)
		}
	})
}

func TestWeekdayName(t *testing.T) {
	t.Run("Success: Monday-first indexing", func(t *testing.T) {
		name, err := domain.WeekdayName("2024-01-01") // a Monday
		require.NoError(t, err)
		assert.Equal(t, "Monday", name)

		name, err = domain.WeekdayName("2024-01-07") // a Sunday
		require.NoError(t, err)
		assert.Equal(t, "Sunday", name)
	})

	t.Run("Error: Invalid date", func(t *testing.T) {
		_, err := domain.WeekdayName("garbage")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}

func TestMonthGrid(t *testing.T) {
	t.Run("Success: February 2024 starts Thursday with 29 days", func(t *testing.T) {
		grid := domain.MonthGrid(2024, time.February)

		require.Len(t, grid, 3+29, "Monday-first offset of 3 plus 29 leap-year days")
		assert.Equal(t, []int{0, 0, 0, 1}, grid[:4])
		assert.Equal(t, 29, grid[len(grid)-1])
	})

	t.Run("Success: Month starting on Monday has no leading blanks", func(t *testing.T) {
		grid := domain.MonthGrid(2024, time.January)
		require.Len(t, grid, 31)
		assert.Equal(t, 1, grid[0])
	})

	t.Run("Success: Month starting on Sunday has six leading blanks", func(t *testing.T) {
		grid := domain.MonthGrid(2024, time.September)
		require.Len(t, grid, 6+30)
		assert.Equal(t, []int{0, 0, 0, 0, 0, 0, 1}, grid[:7])
	})
}

func TestDateRange(t *testing.T) {
	day := func(s string) time.Time {
		d, err := domain.ParseLocalDate(s)
		require.NoError(t, err)
		return d
	}

	t.Run("Edge Case: Inverted range is empty, not an error", func(t *testing.T) {
		r := domain.DateRange{Start: day("2024-01-10"), End: day("2024-01-05")}
		assert.False(t, r.IsValid())
		assert.Equal(t, 0, r.Days())
		assert.False(t, r.Contains(day("2024-01-07")))
	})

	t.Run("Success: Inclusive bounds", func(t *testing.T) {
		r, err := domain.NewDateRange("2024-01-05", "2024-01-10")
		require.NoError(t, err)
		assert.True(t, r.Contains(day("2024-01-05")))
		assert.True(t, r.Contains(day("2024-01-10")))
		assert.False(t, r.Contains(day("2024-01-11")))
		assert.Equal(t, 6, r.Days())
	})

	t.Run("Success: Clamps to the stats window", func(t *testing.T) {
		today := day("2024-03-31")
		r := domain.DateRange{Start: day("2024-01-01"), End: day("2024-04-15")}

		clamped := r.ClampToWindow(today, 30)
		assert.Equal(t, day("2024-03-02"), clamped.Start, "today minus 29 days")
		assert.Equal(t, today, clamped.End)
	})

	t.Run("Edge Case: Non-positive window falls back to default", func(t *testing.T) {
		today := day("2024-03-31")
		r := domain.DateRange{Start: day("2023-01-01"), End: today}
		clamped := r.ClampToWindow(today, 0)
		assert.Equal(t, 30, clamped.Days())
	})

	t.Run("Error: Malformed bound", func(t *testing.T) {
		_, err := domain.NewDateRange("2024-01-05", "nope")
		assert.ErrorIs(t, err, domain.ErrInvalidDate)
	})
}
