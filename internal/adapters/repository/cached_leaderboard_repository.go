package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/itskasymzhomartsanzhar/routr/internal/core/domain"
)

var _ domain.LeaderboardRepository = (*CachedLeaderboardRepository)(nil)

// leaderboardTTL trades freshness for load: the board is recomputed at
// most every five minutes per range.
const leaderboardTTL = 5 * time.Minute

// CachedLeaderboardRepository is a read-through cache over the ranking
// queries. Cache failures degrade to the underlying repository, never
// to an error.
type CachedLeaderboardRepository struct {
	next  domain.LeaderboardRepository
	cache *redis.Client
}

func NewCachedLeaderboardRepository(next domain.LeaderboardRepository, cache *redis.Client) *CachedLeaderboardRepository {
	return &CachedLeaderboardRepository{next: next, cache: cache}
}

func (r *CachedLeaderboardRepository) topKey(rng string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:top:%d", rng, limit)
}

func (r *CachedLeaderboardRepository) viewerKey(rng, userID string) string {
	return fmt.Sprintf("leaderboard:%s:viewer:%s", rng, userID)
}

func (r *CachedLeaderboardRepository) Top(ctx context.Context, rng string, limit int) ([]domain.LeaderboardEntry, error) {
	key := r.topKey(rng, limit)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(val), &entries); err == nil {
			return entries, nil
		}
		log.Printf("[CACHE] Corrupted leaderboard data for %s, cleaning up key", key)
		r.cache.Del(ctx, key)
	} else if err != redis.Nil {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	entries, err := r.next.Top(ctx, rng, limit)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entries); err == nil {
		if setErr := r.cache.Set(ctx, key, data, leaderboardTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}
	return entries, nil
}

func (r *CachedLeaderboardRepository) ViewerEntry(ctx context.Context, rng, userID string) (*domain.LeaderboardEntry, error) {
	key := r.viewerKey(rng, userID)

	val, err := r.cache.Get(ctx, key).Result()
	if err == nil {
		var entry domain.LeaderboardEntry
		if err := json.Unmarshal([]byte(val), &entry); err == nil {
			return &entry, nil
		}
		r.cache.Del(ctx, key)
	} else if err != redis.Nil && !errors.Is(err, context.Canceled) {
		log.Printf("[CACHE] Redis read error: %v", err)
	}

	entry, err := r.next.ViewerEntry(ctx, rng, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(entry); err == nil {
		if setErr := r.cache.Set(ctx, key, data, leaderboardTTL).Err(); setErr != nil {
			log.Printf("[CACHE] Redis set error: %v", setErr)
		}
	}
	return entry, nil
}
