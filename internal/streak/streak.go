package streak

import "time"

const dateLayout = "2006-01-02"

// State tracks consecutive days on which the user hit their step goal.
type State struct {
	UserID        string `json:"user_id"`
	CurrentStreak int    `json:"current_streak"`
	LongestStreak int    `json:"longest_streak"`
	LastHitDate   string `json:"last_hit_date"`
}

// Advance applies one goal hit on day (YYYY-MM-DD): a hit on the day after
// the last one extends the streak, a repeat hit on the same day is a no-op,
// anything else starts over at 1.
func Advance(s State, day string) State {
	if s.LastHitDate == day {
		return s
	}

	if s.LastHitDate == previousDay(day) {
		s.CurrentStreak++
	} else {
		s.CurrentStreak = 1
	}
	if s.CurrentStreak > s.LongestStreak {
		s.LongestStreak = s.CurrentStreak
	}
	s.LastHitDate = day
	return s
}

func previousDay(day string) string {
	t, err := time.Parse(dateLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, -1).Format(dateLayout)
}
