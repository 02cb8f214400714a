package steps

import "time"

type DailySteps struct {
	UserID    string    `json:"user_id"`
	Day       string    `json:"day"`
	Steps     int       `json:"steps"`
	Goal      int       `json:"goal"`
	GoalHit   bool      `json:"goal_hit"`
	Streak    int       `json:"streak,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ReportRequest struct {
	Day   string `json:"day"`
	Steps int    `json:"steps"`
}
