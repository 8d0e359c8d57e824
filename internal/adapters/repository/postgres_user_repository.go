package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

type PostgresUserRepository struct {
	db *sqlx.DB
}

func NewPostgresUserRepository(db *sqlx.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

const userColumns = `
	id, telegram_id, username, first_name, last_name, photo_url, is_premium,
	xp, level, title, streak_shields, xp_today, COALESCE(xp_today_date, '') AS xp_today_date,
	balance_wheel_public_only, stats_days, created_at, updated_at`

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		INSERT INTO users (
			id, telegram_id, username, first_name, last_name, photo_url, is_premium,
			xp, level, title, streak_shields, xp_today, xp_today_date,
			balance_wheel_public_only, stats_days, created_at, updated_at
		) VALUES (
			:id, :telegram_id, :username, :first_name, :last_name, :photo_url, :is_premium,
			:xp, :level, :title, :streak_shields, :xp_today, NULLIF(:xp_today_date, ''),
			:balance_wheel_public_only, :stats_days, :created_at, :updated_at
		)`

	_, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("telegram account already registered: %w", err)
		}
		return fmt.Errorf("repository: create user failed: %w", err)
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	err := r.db.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by id failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var user domain.User
	query := `SELECT ` + userColumns + ` FROM users WHERE telegram_id = $1`

	err := r.db.GetContext(ctx, &user, query, telegramID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("repository: get user by telegram id failed: %w", err)
	}
	return &user, nil
}

func (r *PostgresUserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	query := `
		UPDATE users SET
			username = :username, first_name = :first_name, last_name = :last_name,
			photo_url = :photo_url, is_premium = :is_premium,
			xp = :xp, level = :level, title = :title, streak_shields = :streak_shields,
			xp_today = :xp_today, xp_today_date = NULLIF(:xp_today_date, ''),
			balance_wheel_public_only = :balance_wheel_public_only, stats_days = :stats_days,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, user)
	if err != nil {
		return fmt.Errorf("repository: update user failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
