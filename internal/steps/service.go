package steps

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
	"github.com/Outstandr/lovable-fit-sub000/internal/streak"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDay    = errors.New("day must be YYYY-MM-DD")
	ErrNegativeSteps = errors.New("steps must be non-negative")
)

// StreakRecorder is satisfied by *streak.Service.
type StreakRecorder interface {
	RecordGoalHit(ctx context.Context, userID, day string) (streak.State, error)
}

type Service struct {
	db      db.Querier
	streaks StreakRecorder
}

func NewService(db db.Querier, streaks StreakRecorder) *Service {
	return &Service{db: db, streaks: streaks}
}

// ReportDaily upserts the device-reported total for one user+day. The device
// is authoritative for its own day, so the write is last-write-wins. Hitting
// the profile goal advances the streak.
func (s *Service) ReportDaily(ctx context.Context, userID, day string, stepsToday int) (DailySteps, error) {
	if _, err := time.Parse(dateLayout, day); err != nil {
		return DailySteps{}, ErrInvalidDay
	}
	if stepsToday < 0 {
		return DailySteps{}, ErrNegativeSteps
	}

	record := DailySteps{UserID: userID, Day: day, Steps: stepsToday}
	row := s.db.QueryRow(ctx, `
		INSERT INTO daily_steps (user_id, day, steps)
		VALUES ($1,$2,$3)
		ON CONFLICT (user_id, day) DO UPDATE SET steps=EXCLUDED.steps, updated_at=NOW()
		RETURNING updated_at
	`, userID, day, stepsToday)
	if err := row.Scan(&record.UpdatedAt); err != nil {
		return DailySteps{}, err
	}

	goal, err := s.dailyGoal(ctx, userID)
	if err != nil {
		return DailySteps{}, err
	}
	record.Goal = goal
	record.GoalHit = goal > 0 && stepsToday >= goal

	if record.GoalHit && s.streaks != nil {
		state, err := s.streaks.RecordGoalHit(ctx, userID, day)
		if err != nil {
			return DailySteps{}, err
		}
		record.Streak = state.CurrentStreak
	}
	return record, nil
}

// Day returns the aggregate for one user+day; a missing row is a zero value,
// not an error.
func (s *Service) Day(ctx context.Context, userID, day string) (DailySteps, error) {
	goal, err := s.dailyGoal(ctx, userID)
	if err != nil {
		return DailySteps{}, err
	}

	record := DailySteps{UserID: userID, Day: day, Goal: goal}
	row := s.db.QueryRow(ctx, `
		SELECT steps, updated_at FROM daily_steps WHERE user_id=$1 AND day=$2
	`, userID, day)
	err = row.Scan(&record.Steps, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return record, nil
	}
	if err != nil {
		return DailySteps{}, err
	}
	record.GoalHit = goal > 0 && record.Steps >= goal
	return record, nil
}

func (s *Service) History(ctx context.Context, userID, from, to string) ([]DailySteps, error) {
	rows, err := s.db.Query(ctx, `
		SELECT day::text, steps, updated_at
		FROM daily_steps
		WHERE user_id=$1 AND day BETWEEN $2 AND $3
		ORDER BY day
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []DailySteps
	for rows.Next() {
		record := DailySteps{UserID: userID}
		if err := rows.Scan(&record.Day, &record.Steps, &record.UpdatedAt); err != nil {
			return nil, err
		}
		history = append(history, record)
	}
	return history, nil
}

func (s *Service) dailyGoal(ctx context.Context, userID string) (int, error) {
	var goal int
	err := s.db.QueryRow(ctx, `
		SELECT daily_goal FROM profiles WHERE user_id=$1
	`, userID).Scan(&goal)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return goal, nil
}
