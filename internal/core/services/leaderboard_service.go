package services

import (
	"context"
	"errors"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

const (
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 50
)

type LeaderboardService struct {
	board domain.LeaderboardRepository
	users domain.UserRepository
}

func NewLeaderboardService(board domain.LeaderboardRepository, users domain.UserRepository) *LeaderboardService {
	return &LeaderboardService{board: board, users: users}
}

// Get fetches the ranked board for a range and merges the viewer's own
// position into it. When the ranking backend cannot place the viewer,
// the user record itself becomes an unranked trailing row so the board
// always shows "you".
func (s *LeaderboardService) Get(ctx context.Context, viewerID, rng string, limit int) (*domain.Leaderboard, error) {
	rng = domain.NormalizeLeaderboardRange(rng)
	if limit < 1 || limit > maxLeaderboardLimit {
		limit = defaultLeaderboardLimit
	}

	top, err := s.board.Top(ctx, rng, limit)
	if err != nil {
		return nil, err
	}

	me, err := s.board.ViewerEntry(ctx, rng, viewerID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		user, uerr := s.users.GetByID(ctx, viewerID)
		if uerr != nil {
			return nil, uerr
		}
		entry := user.AsLeaderboardEntry(0)
		me = &entry
	}

	items, you := domain.MergeLeaderboard(top, me, limit)
	return &domain.Leaderboard{Range: rng, Items: items, Me: you}, nil
}
