package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

type PostgresCompletionRepository struct {
	db *sqlx.DB
}

func NewPostgresCompletionRepository(db *sqlx.DB) *PostgresCompletionRepository {
	return &PostgresCompletionRepository{db: db}
}

func (r *PostgresCompletionRepository) Upsert(ctx context.Context, event *domain.CompletionEvent) error {
	query := `
		INSERT INTO completions (
			id, habit_id, owner_id, day, count, created_at, updated_at
		) VALUES (
			:id, :habit_id, :owner_id, :date, :count, :created_at, :updated_at
		)
		ON CONFLICT (habit_id, day) DO UPDATE
		SET count = EXCLUDED.count, updated_at = EXCLUDED.updated_at`

	_, err := r.db.NamedExecContext(ctx, query, event)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return fmt.Errorf("referenced habit or user does not exist: %w", err)
		}
		return fmt.Errorf("completion upsert failed: %w", err)
	}
	return nil
}

func (r *PostgresCompletionRepository) GetForDate(ctx context.Context, habitID, isoDate string) (*domain.CompletionEvent, error) {
	var event domain.CompletionEvent
	query := `
		SELECT id, habit_id, owner_id, day AS date, count, created_at, updated_at
		FROM completions
		WHERE habit_id = $1 AND day = $2`

	err := r.db.GetContext(ctx, &event, query, habitID, isoDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCompletionNotFound
		}
		return nil, fmt.Errorf("completion query failed: %w", err)
	}
	return &event, nil
}

func (r *PostgresCompletionRepository) ListByHabit(ctx context.Context, habitID string) ([]domain.CompletionEvent, error) {
	events := []domain.CompletionEvent{}
	query := `
		SELECT id, habit_id, owner_id, day AS date, count, created_at, updated_at
		FROM completions
		WHERE habit_id = $1
		ORDER BY day ASC`

	if err := r.db.SelectContext(ctx, &events, query, habitID); err != nil {
		return nil, fmt.Errorf("completion list failed: %w", err)
	}
	return events, nil
}

func (r *PostgresCompletionRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.CompletionEvent, error) {
	events := []domain.CompletionEvent{}
	query := `
		SELECT id, habit_id, owner_id, day AS date, count, created_at, updated_at
		FROM completions
		WHERE owner_id = $1
		ORDER BY day ASC`

	if err := r.db.SelectContext(ctx, &events, query, ownerID); err != nil {
		return nil, fmt.Errorf("completion list failed: %w", err)
	}
	return events, nil
}

func (r *PostgresCompletionRepository) CountGoalMetForDate(ctx context.Context, ownerID, isoDate string) (int, error) {
	var count int
	query := `
		SELECT count(*)
		FROM completions co
		JOIN habits h ON h.id = co.habit_id
		WHERE co.owner_id = $1
		  AND co.day = $2
		  AND co.count >= GREATEST(h.goal, 1)`

	if err := r.db.GetContext(ctx, &count, query, ownerID, isoDate); err != nil {
		return 0, fmt.Errorf("goal-met count failed: %w", err)
	}
	return count, nil
}
