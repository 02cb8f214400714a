package streak

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Get(ctx context.Context, userID string) (State, error) {
	row := s.db.QueryRow(ctx, `
		SELECT user_id, current_streak, longest_streak, COALESCE(last_hit_date::text, '')
		FROM streaks WHERE user_id=$1
	`, userID)

	state := State{UserID: userID}
	err := row.Scan(&state.UserID, &state.CurrentStreak, &state.LongestStreak, &state.LastHitDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return State{UserID: userID}, nil
	}
	if err != nil {
		return State{}, err
	}
	return state, nil
}

// RecordGoalHit advances the user's streak for day and persists the result.
// Repeated hits on the same day leave the row untouched.
func (s *Service) RecordGoalHit(ctx context.Context, userID, day string) (State, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return State{}, err
	}

	next := Advance(current, day)
	if next == current {
		return current, nil
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO streaks (user_id, current_streak, longest_streak, last_hit_date)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak=EXCLUDED.current_streak,
		    longest_streak=EXCLUDED.longest_streak,
		    last_hit_date=EXCLUDED.last_hit_date
	`, userID, next.CurrentStreak, next.LongestStreak, next.LastHitDate)
	if err != nil {
		return State{}, err
	}
	return next, nil
}
