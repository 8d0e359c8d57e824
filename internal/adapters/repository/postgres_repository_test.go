package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		dbUser = "routr_user"
	}
	dbPass := os.Getenv("DB_PASSWORD")
	if dbPass == "" {
		dbPass = "secret"
	}
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		dbHost = "localhost"
	}
	dbPort := os.Getenv("DB_PORT")
	if dbPort == "" {
		dbPort = "5432"
	}
	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "routr_db"
	}

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		dbUser, dbPass, dbHost, dbPort, dbName)

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		t.Skipf("Skipping integration tests: database connection failed: %v", err)
	}
	return db
}

func cleanup(t *testing.T, db *sqlx.DB) {
	_, err := db.Exec("TRUNCATE TABLE completions, habits, users CASCADE")
	require.NoError(t, err, "Failed to clean up database")
}

func seedTestUser(t *testing.T, db *sqlx.DB, telegramID int64, username string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(telegramID, username, username, "", "")
	require.NoError(t, err)
	require.NoError(t, NewPostgresUserRepository(db).Create(context.Background(), user))
	return user
}

func TestPostgresHabitRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresHabitRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, 100001, "habit_owner")

	habit, err := domain.NewHabit(owner.ID, domain.HabitForm{
		Title:         "Test Integration Habit",
		Goal:          3,
		RepeatDays:    []string{"Monday", "Wednesday", "Friday"},
		Reminder:      true,
		ReminderTimes: []string{"08:00"},
		Visibility:    domain.VisibilityPublic,
	})
	require.NoError(t, err)

	t.Run("Create Habit", func(t *testing.T) {
		assert.NoError(t, repo.Create(ctx, habit))
	})

	t.Run("Get By ID round-trips arrays", func(t *testing.T) {
		fetched, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, habit.Title, fetched.Title)
		assert.Equal(t, []string{"Monday", "Wednesday", "Friday"}, fetched.RepeatDays)
		assert.Equal(t, []string{"08:00"}, fetched.ReminderTimes)
		assert.Equal(t, 3, fetched.Goal)
	})

	t.Run("Get By ID scans a NULL category", func(t *testing.T) {
		bare, err := domain.NewHabit(owner.ID, domain.HabitForm{Title: "No Category"})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, bare))
		defer func() { require.NoError(t, repo.Delete(ctx, bare.ID)) }()

		fetched, err := repo.GetByID(ctx, bare.ID)
		require.NoError(t, err)
		assert.Zero(t, fetched.CategoryID)
		assert.Empty(t, fetched.CategoryName)

		list, err := repo.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	t.Run("Update Habit", func(t *testing.T) {
		require.NoError(t, habit.Update(domain.HabitForm{
			Title:      "Updated Title",
			Goal:       5,
			Visibility: domain.VisibilityPrivate,
		}))
		require.NoError(t, repo.Update(ctx, habit))

		updated, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, "Updated Title", updated.Title)
		assert.Equal(t, 5, updated.Goal)
		assert.Empty(t, updated.RepeatDays)
	})

	t.Run("List By Owner", func(t *testing.T) {
		list, err := repo.ListByOwner(ctx, owner.ID)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, habit.ID, list[0].ID)
	})

	t.Run("ListPublic filters by visibility and title", func(t *testing.T) {
		pub, err := domain.NewHabit(owner.ID, domain.HabitForm{
			Title:      "Morning Jog",
			Visibility: domain.VisibilityPublic,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, pub))

		list, err := repo.ListPublic(ctx, "jog", 10)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, pub.ID, list[0].ID)

		list, err = repo.ListPublic(ctx, "", 10)
		require.NoError(t, err)
		assert.Len(t, list, 1, "the updated habit went private")
	})

	t.Run("ListBySource finds the copies", func(t *testing.T) {
		copier := seedTestUser(t, db, 100004, "habit_copier")

		src, err := domain.NewHabit(owner.ID, domain.HabitForm{
			Title:      "Copied Around",
			Visibility: domain.VisibilityPublic,
		})
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, src))

		cp, err := src.CopyFor(copier.ID)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, cp))

		copies, err := repo.ListBySource(ctx, src.ID)
		require.NoError(t, err)
		require.Len(t, copies, 1)
		assert.Equal(t, copier.ID, copies[0].OwnerID)
		assert.Equal(t, src.ID, copies[0].SourceHabitID)
	})

	t.Run("UpdateStreaks", func(t *testing.T) {
		require.NoError(t, repo.UpdateStreaks(ctx, habit.ID, 4, 9))

		fetched, err := repo.GetByID(ctx, habit.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, fetched.CurrentStreak)
		assert.Equal(t, 9, fetched.BestStreak)
	})

	t.Run("Update/Delete Non-Existent ID", func(t *testing.T) {
		ghost, err := domain.NewHabit(owner.ID, domain.HabitForm{Title: "Ghost"})
		require.NoError(t, err)

		assert.ErrorIs(t, repo.Update(ctx, ghost), domain.ErrHabitNotFound)
		assert.ErrorIs(t, repo.Delete(ctx, ghost.ID), domain.ErrHabitNotFound)
	})

	t.Run("Delete Habit", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, habit.ID))
		_, err := repo.GetByID(ctx, habit.ID)
		assert.ErrorIs(t, err, domain.ErrHabitNotFound)
	})
}

func TestPostgresCompletionRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	habits := NewPostgresHabitRepository(db)
	repo := NewPostgresCompletionRepository(db)
	ctx := context.Background()

	owner := seedTestUser(t, db, 100002, "completion_owner")
	habit, err := domain.NewHabit(owner.ID, domain.HabitForm{Title: "Drink Water", Goal: 2})
	require.NoError(t, err)
	require.NoError(t, habits.Create(ctx, habit))

	now := time.Now().UTC()
	event := &domain.CompletionEvent{
		ID: "11111111-1111-1111-1111-111111111111", HabitID: habit.ID, OwnerID: owner.ID,
		Date: "2024-03-01", Count: 1, CreatedAt: now, UpdatedAt: now,
	}

	t.Run("Upsert inserts then replaces the count", func(t *testing.T) {
		require.NoError(t, repo.Upsert(ctx, event))

		event.Count = 2
		event.UpdatedAt = time.Now().UTC()
		require.NoError(t, repo.Upsert(ctx, event))

		fetched, err := repo.GetForDate(ctx, habit.ID, "2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, 2, fetched.Count)
	})

	t.Run("GetForDate misses cleanly", func(t *testing.T) {
		_, err := repo.GetForDate(ctx, habit.ID, "2024-03-02")
		assert.ErrorIs(t, err, domain.ErrCompletionNotFound)
	})

	t.Run("ListByHabit orders by day", func(t *testing.T) {
		earlier := &domain.CompletionEvent{
			ID: "22222222-2222-2222-2222-222222222222", HabitID: habit.ID, OwnerID: owner.ID,
			Date: "2024-02-28", Count: 2, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.Upsert(ctx, earlier))

		events, err := repo.ListByHabit(ctx, habit.ID)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "2024-02-28", events[0].Date)
		assert.Equal(t, "2024-03-01", events[1].Date)
	})

	t.Run("CountGoalMetForDate respects the habit goal", func(t *testing.T) {
		count, err := repo.CountGoalMetForDate(ctx, owner.ID, "2024-03-01")
		require.NoError(t, err)
		assert.Equal(t, 1, count, "count 2 met the goal of 2")

		below := &domain.CompletionEvent{
			ID: "33333333-3333-3333-3333-333333333333", HabitID: habit.ID, OwnerID: owner.ID,
			Date: "2024-03-03", Count: 1, CreatedAt: now, UpdatedAt: now,
		}
		require.NoError(t, repo.Upsert(ctx, below))

		count, err = repo.CountGoalMetForDate(ctx, owner.ID, "2024-03-03")
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestPostgresUserRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	repo := NewPostgresUserRepository(db)
	ctx := context.Background()

	user := seedTestUser(t, db, 100003, "user_repo")

	t.Run("GetByID and GetByTelegramID agree", func(t *testing.T) {
		byID, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)

		byTG, err := repo.GetByTelegramID(ctx, 100003)
		require.NoError(t, err)

		assert.Equal(t, byID.ID, byTG.ID)
		assert.Equal(t, 1, byID.Level)
	})

	t.Run("Update persists progress fields", func(t *testing.T) {
		user.XP = 120
		user.Level = 7
		user.XPToday = 30
		user.XPTodayDate = "2024-03-01"
		require.NoError(t, repo.Update(ctx, user))

		fetched, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, 120, fetched.XP)
		assert.Equal(t, 7, fetched.Level)
		assert.Equal(t, "2024-03-01", fetched.XPTodayDate)
	})

	t.Run("Error: Unknown user", func(t *testing.T) {
		_, err := repo.GetByID(ctx, "no-such-id")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})

	t.Run("Error: Duplicate telegram id", func(t *testing.T) {
		dup, err := domain.NewUser(100003, "dup", "Dup", "", "")
		require.NoError(t, err)
		assert.Error(t, repo.Create(ctx, dup))
	})
}

func TestPostgresLeaderboardRepository_Integration(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	cleanup(t, db)
	defer cleanup(t, db)

	users := NewPostgresUserRepository(db)
	repo := NewPostgresLeaderboardRepository(db)
	ctx := context.Background()

	a := seedTestUser(t, db, 200001, "alpha")
	b := seedTestUser(t, db, 200002, "beta")
	c := seedTestUser(t, db, 200003, "gamma")

	a.XP = 300
	b.XP = 500
	c.XP = 100
	require.NoError(t, users.Update(ctx, a))
	require.NoError(t, users.Update(ctx, b))
	require.NoError(t, users.Update(ctx, c))

	t.Run("Top orders by XP and applies the limit", func(t *testing.T) {
		top, err := repo.Top(ctx, "month", 2)
		require.NoError(t, err)
		require.Len(t, top, 2)
		assert.Equal(t, b.ID, top[0].ID)
		assert.Equal(t, 1, top[0].Rank)
		assert.Equal(t, a.ID, top[1].ID)
	})

	t.Run("ViewerEntry finds ranks outside the window", func(t *testing.T) {
		entry, err := repo.ViewerEntry(ctx, "month", c.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, entry.Rank)
		assert.Equal(t, 100, entry.XP)
	})

	t.Run("Error: Unknown viewer", func(t *testing.T) {
		_, err := repo.ViewerEntry(ctx, "month", "no-such-id")
		assert.ErrorIs(t, err, domain.ErrUserNotFound)
	})
}
