package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

func (s *Service) Assign(ctx context.Context, userID string, dayNumber int, title, description string) (Task, error) {
	task := Task{
		ID:          uuid.NewString(),
		UserID:      userID,
		DayNumber:   dayNumber,
		Title:       title,
		Description: description,
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO protocol_tasks (id, user_id, day_number, title, description)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, task.ID, task.UserID, task.DayNumber, task.Title, task.Description)
	if err := row.Scan(&task.CreatedAt); err != nil {
		return Task{}, err
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Task, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, user_id, day_number, title, description, completed_at IS NOT NULL, COALESCE(completed_at, 'epoch'::timestamptz), created_at
		FROM protocol_tasks WHERE user_id=$1
		ORDER BY day_number, created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.DayNumber, &t.Title, &t.Description, &t.Completed, &t.CompletedAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		if !t.Completed {
			t.CompletedAt = time.Time{}
		}
		list = append(list, t)
	}
	return list, nil
}

// Complete marks a task done. Completing an already-completed task keeps
// the original completion time.
func (s *Service) Complete(ctx context.Context, userID, taskID string) error {
	_, err := s.db.Exec(ctx, `
		UPDATE protocol_tasks
		SET completed_at=NOW()
		WHERE id=$1 AND user_id=$2 AND completed_at IS NULL
	`, taskID, userID)
	return err
}
