package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type PostgresHabitRepository struct {
	db *sqlx.DB
}

func NewPostgresHabitRepository(db *sqlx.DB) *PostgresHabitRepository {
	return &PostgresHabitRepository{db: db}
}

type scannable interface {
	Scan(dest ...interface{}) error
}

const habitColumns = `
	h.id, h.owner_id, h.title, h.icon,
	COALESCE(h.category_id, 0), COALESCE(c.name, ''),
	h.goal, h.repeat_days, h.reminder, h.reminder_times, h.visibility,
	h.current_streak, h.best_streak, COALESCE(h.source_habit_id, ''),
	h.created_at, h.updated_at`

func (r *PostgresHabitRepository) scanRow(row scannable) (*domain.Habit, error) {
	var h domain.Habit
	var repeatDays, reminderTimes pq.StringArray

	err := row.Scan(
		&h.ID, &h.OwnerID, &h.Title, &h.Icon,
		&h.CategoryID, &h.CategoryName,
		&h.Goal, &repeatDays, &h.Reminder, &reminderTimes, &h.Visibility,
		&h.CurrentStreak, &h.BestStreak, &h.SourceHabitID,
		&h.CreatedAt, &h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.RepeatDays = repeatDays
	h.ReminderTimes = reminderTimes
	return &h, nil
}

func (r *PostgresHabitRepository) Create(ctx context.Context, h *domain.Habit) error {
	query := `
        INSERT INTO habits (
            id, owner_id, title, icon, category_id,
            goal, repeat_days, reminder, reminder_times, visibility,
            current_streak, best_streak, source_habit_id,
            created_at, updated_at
        ) VALUES (
            $1, $2, $3, $4, NULLIF($5, 0),
            $6, $7, $8, $9, $10,
            0, 0, NULLIF($11, ''),
            $12, $13
        )`

	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.OwnerID, h.Title, h.Icon, h.CategoryID,
		h.Goal, pq.StringArray(h.RepeatDays), h.Reminder, pq.StringArray(h.ReminderTimes), h.Visibility,
		h.SourceHabitID,
		h.CreatedAt, h.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("referenced owner or category does not exist: %w", err)
		}
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (r *PostgresHabitRepository) GetByID(ctx context.Context, id string) (*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        LEFT JOIN categories c ON c.id = h.category_id
        WHERE h.id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	h, err := r.scanRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHabitNotFound
		}
		return nil, fmt.Errorf("database scan error: %w", err)
	}
	return h, nil
}

func (r *PostgresHabitRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        LEFT JOIN categories c ON c.id = h.category_id
        WHERE h.owner_id = $1
        ORDER BY h.created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) ListPublic(ctx context.Context, search string, limit int) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        LEFT JOIN categories c ON c.id = h.category_id
        WHERE h.visibility = $1
          AND ($2 = '' OR h.title ILIKE '%' || $2 || '%')
        ORDER BY h.created_at DESC
        LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, domain.VisibilityPublic, search, limit)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.Habit, error) {
	query := `
        SELECT ` + habitColumns + `
        FROM habits h
        LEFT JOIN categories c ON c.id = h.category_id
        WHERE h.source_habit_id = $1
        ORDER BY h.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, sourceID)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	habits := []*domain.Habit{}
	for rows.Next() {
		h, err := r.scanRow(rows)
		if err != nil {
			return nil, fmt.Errorf("row scan error: %w", err)
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (r *PostgresHabitRepository) Update(ctx context.Context, h *domain.Habit) error {
	query := `
        UPDATE habits SET
            title=$1, icon=$2, category_id=NULLIF($3, 0),
            goal=$4, repeat_days=$5, reminder=$6, reminder_times=$7,
            visibility=$8, updated_at=NOW()
        WHERE id=$9`

	res, err := r.db.ExecContext(ctx, query,
		h.Title, h.Icon, h.CategoryID,
		h.Goal, pq.StringArray(h.RepeatDays), h.Reminder, pq.StringArray(h.ReminderTimes),
		h.Visibility, h.ID,
	)
	if err != nil {
		return fmt.Errorf("update query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *PostgresHabitRepository) UpdateStreaks(ctx context.Context, id string, current, best int) error {
	query := `
        UPDATE habits
        SET current_streak = $1, best_streak = $2, updated_at = NOW()
        WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, current, best, id)
	if err != nil {
		return fmt.Errorf("streak update failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *PostgresHabitRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete query failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrHabitNotFound
	}
	return nil
}

func (r *PostgresHabitRepository) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	err := r.db.SelectContext(ctx, &categories, `SELECT id, name FROM categories ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("category query error: %w", err)
	}
	return categories, nil
}
