package profile

import "time"

type Profile struct {
	UserID            string    `json:"user_id"`
	DisplayName       string    `json:"display_name"`
	AvatarURL         string    `json:"avatar_url"`
	StrideCm          int       `json:"stride_cm"`
	DailyGoal         int       `json:"daily_goal"`
	ShowOnLeaderboard bool      `json:"show_on_leaderboard"`
	PushToken         string    `json:"-"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type VisibilityRequest struct {
	ShowOnLeaderboard bool `json:"show_on_leaderboard"`
}

type PushTokenRequest struct {
	Token string `json:"token"`
}
