package leaderboard

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
)

const cacheKey = "leaderboard:weekly"

type Service struct {
	db       db.Querier
	redis    *redis.Client
	cacheTTL time.Duration
}

func NewService(db db.Querier, redisClient *redis.Client, cacheTTL time.Duration) *Service {
	return &Service{db: db, redis: redisClient, cacheTTL: cacheTTL}
}

// Weekly returns the merged weekly board as seen by requesterID. The raw
// ranked list may come from the Redis snapshot; hidden users are always
// re-fetched so a fresh opt-out (including the requester's own) takes
// effect immediately.
func (s *Service) Weekly(ctx context.Context, requesterID string) ([]Entry, error) {
	ranked, err := s.rankedEntries(ctx)
	if err != nil {
		return nil, err
	}

	hidden, err := s.hiddenUsers(ctx)
	if err != nil {
		return nil, err
	}

	// The requester's own flag is checked directly as well; the hidden set
	// can lag their most recent opt-out.
	if requesterID != "" && !hidden[requesterID] {
		visible, err := s.requesterVisible(ctx, requesterID)
		if err == nil && !visible {
			hidden[requesterID] = true
		}
	}

	return Merge(ranked, hidden), nil
}

func (s *Service) requesterVisible(ctx context.Context, userID string) (bool, error) {
	var visible bool
	err := s.db.QueryRow(ctx, `
		SELECT show_on_leaderboard FROM profiles WHERE user_id=$1
	`, userID).Scan(&visible)
	if err != nil {
		return true, err
	}
	return visible, nil
}

func (s *Service) rankedEntries(ctx context.Context) ([]Entry, error) {
	if cached, ok := s.fromCache(ctx); ok {
		return cached, nil
	}

	weekStart := time.Now().AddDate(0, 0, -6).Format("2006-01-02")
	rows, err := s.db.Query(ctx, `
		SELECT RANK() OVER (ORDER BY SUM(d.steps) DESC) AS rank,
		       p.user_id, p.display_name, SUM(d.steps)::int AS steps,
		       COALESCE(st.current_streak, 0)
		FROM daily_steps d
		JOIN profiles p ON p.user_id = d.user_id
		LEFT JOIN streaks st ON st.user_id = d.user_id
		WHERE d.day >= $1
		GROUP BY p.user_id, p.display_name, st.current_streak
		ORDER BY steps DESC
	`, weekStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ranked []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Rank, &e.UserID, &e.DisplayName, &e.Steps, &e.Streak); err != nil {
			return nil, err
		}
		ranked = append(ranked, e)
	}

	s.toCache(ctx, ranked)
	return ranked, nil
}

func (s *Service) hiddenUsers(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
		SELECT user_id FROM profiles WHERE show_on_leaderboard=FALSE
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hidden := map[string]bool{}
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		hidden[userID] = true
	}
	return hidden, nil
}

func (s *Service) fromCache(ctx context.Context) ([]Entry, bool) {
	if s.redis == nil {
		return nil, false
	}
	data, err := s.redis.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, false
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

func (s *Service) toCache(ctx context.Context, entries []Entry) {
	if s.redis == nil || len(entries) == 0 {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, cacheKey, data, s.cacheTTL).Err(); err != nil {
		log.Printf("leaderboard cache write failed: %v", err)
	}
}
