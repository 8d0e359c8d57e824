package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

// PostgresLeaderboardRepository ranks users by lifetime XP with a
// window function. The range parameter is accepted for interface
// symmetry; per-period XP is not tracked separately, so every range
// ranks the same cumulative score.
type PostgresLeaderboardRepository struct {
	db *sqlx.DB
}

func NewPostgresLeaderboardRepository(db *sqlx.DB) *PostgresLeaderboardRepository {
	return &PostgresLeaderboardRepository{db: db}
}

func (r *PostgresLeaderboardRepository) Top(ctx context.Context, rng string, limit int) ([]domain.LeaderboardEntry, error) {
	query := `
		SELECT id, COALESCE(NULLIF(first_name, ''), NULLIF(username, ''), 'User') AS name,
		       photo_url, level, xp, is_premium,
		       RANK() OVER (ORDER BY xp DESC, created_at ASC) AS rank
		FROM users
		ORDER BY rank ASC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("leaderboard query failed: %w", err)
	}
	defer rows.Close()

	entries := []domain.LeaderboardEntry{}
	for rows.Next() {
		var e domain.LeaderboardEntry
		if err := rows.Scan(&e.ID, &e.Name, &e.Avatar, &e.Level, &e.XP, &e.IsPremium, &e.Rank); err != nil {
			return nil, fmt.Errorf("leaderboard scan failed: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *PostgresLeaderboardRepository) ViewerEntry(ctx context.Context, rng, userID string) (*domain.LeaderboardEntry, error) {
	query := `
		SELECT id, name, photo_url, level, xp, is_premium, rank FROM (
			SELECT id, COALESCE(NULLIF(first_name, ''), NULLIF(username, ''), 'User') AS name,
			       photo_url, level, xp, is_premium,
			       RANK() OVER (ORDER BY xp DESC, created_at ASC) AS rank
			FROM users
		) ranked
		WHERE id = $1`

	var e domain.LeaderboardEntry
	row := r.db.QueryRowContext(ctx, query, userID)
	err := row.Scan(&e.ID, &e.Name, &e.Avatar, &e.Level, &e.XP, &e.IsPremium, &e.Rank)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("viewer rank query failed: %w", err)
	}
	return &e, nil
}
