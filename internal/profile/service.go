package profile

import (
	"context"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
)

// Average adult stride, used until the user measures their own.
const defaultStrideCm = 72

type Service struct {
	db          db.Querier
	defaultGoal int
}

func NewService(db db.Querier, defaultGoal int) *Service {
	return &Service{db: db, defaultGoal: defaultGoal}
}

// Get returns the user's profile, creating a default row on first access.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO profiles (user_id, stride_cm, daily_goal, show_on_leaderboard)
		VALUES ($1,$2,$3,TRUE)
		ON CONFLICT (user_id) DO UPDATE SET user_id=EXCLUDED.user_id
		RETURNING user_id, display_name, avatar_url, stride_cm, daily_goal, show_on_leaderboard, updated_at
	`, userID, defaultStrideCm, s.defaultGoal)

	var p Profile
	if err := row.Scan(&p.UserID, &p.DisplayName, &p.AvatarURL, &p.StrideCm, &p.DailyGoal, &p.ShowOnLeaderboard, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func (s *Service) Update(ctx context.Context, userID string, patch Profile) (Profile, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if patch.DisplayName != "" {
		current.DisplayName = patch.DisplayName
	}
	if patch.AvatarURL != "" {
		current.AvatarURL = patch.AvatarURL
	}
	if patch.StrideCm > 0 {
		current.StrideCm = patch.StrideCm
	}
	if patch.DailyGoal > 0 {
		current.DailyGoal = patch.DailyGoal
	}

	_, err = s.db.Exec(ctx, `
		UPDATE profiles
		SET display_name=$2, avatar_url=$3, stride_cm=$4, daily_goal=$5, updated_at=NOW()
		WHERE user_id=$1
	`, userID, current.DisplayName, current.AvatarURL, current.StrideCm, current.DailyGoal)
	if err != nil {
		return Profile{}, err
	}
	return current, nil
}

func (s *Service) SetVisibility(ctx context.Context, userID string, visible bool) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles SET show_on_leaderboard=$2, updated_at=NOW() WHERE user_id=$1
	`, userID, visible)
	return err
}

// RegisterPushToken stores the device push token; delivery is handled by an
// external push service.
func (s *Service) RegisterPushToken(ctx context.Context, userID, token string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles SET push_token=$2, updated_at=NOW() WHERE user_id=$1
	`, userID, token)
	return err
}

// StrideM returns the user's stride length in meters, used for the
// step-based distance fallback when a session has no GPS fixes.
func (s *Service) StrideM(ctx context.Context, userID string) (float64, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return 0, err
	}
	return float64(p.StrideCm) / 100, nil
}
