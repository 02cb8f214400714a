package audiobook

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

func (s *Service) Books(ctx context.Context) ([]Book, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, title, author, cover_url, created_at
		FROM audiobooks ORDER BY title
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CoverURL, &b.CreatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}

func (s *Service) Chapters(ctx context.Context, bookID string) ([]Chapter, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, book_id, chapter_index, title, audio_url, duration_seconds
		FROM audiobook_chapters WHERE book_id=$1
		ORDER BY chapter_index
	`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []Chapter
	for rows.Next() {
		var c Chapter
		if err := rows.Scan(&c.ID, &c.BookID, &c.Index, &c.Title, &c.AudioURL, &c.DurationSeconds); err != nil {
			return nil, err
		}
		chapters = append(chapters, c)
	}
	return chapters, nil
}

// SaveProgress upserts the resume point, last-write-wins per user+book.
func (s *Service) SaveProgress(ctx context.Context, p Progress) (Progress, error) {
	if p.PositionSeconds < 0 {
		return Progress{}, errors.New("position must be non-negative")
	}
	row := s.db.QueryRow(ctx, `
		INSERT INTO audiobook_progress (user_id, book_id, chapter_id, position_seconds)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (user_id, book_id) DO UPDATE
		SET chapter_id=EXCLUDED.chapter_id, position_seconds=EXCLUDED.position_seconds, updated_at=NOW()
		RETURNING updated_at
	`, p.UserID, p.BookID, p.ChapterID, p.PositionSeconds)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Progress{}, err
	}
	return p, nil
}

// Resume returns the saved position; a book never started resumes from the
// beginning with no error.
func (s *Service) Resume(ctx context.Context, userID, bookID string) (Progress, error) {
	p := Progress{UserID: userID, BookID: bookID}
	row := s.db.QueryRow(ctx, `
		SELECT chapter_id, position_seconds, updated_at
		FROM audiobook_progress WHERE user_id=$1 AND book_id=$2
	`, userID, bookID)
	err := row.Scan(&p.ChapterID, &p.PositionSeconds, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return p, nil
	}
	if err != nil {
		return Progress{}, err
	}
	return p, nil
}
