package audiobook

import "time"

type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	CoverURL  string    `json:"cover_url"`
	CreatedAt time.Time `json:"created_at"`
}

type Chapter struct {
	ID              string `json:"id"`
	BookID          string `json:"book_id"`
	Index           int    `json:"index"`
	Title           string `json:"title"`
	AudioURL        string `json:"audio_url"`
	DurationSeconds int    `json:"duration_seconds"`
}

// Progress is the user's resume point, last-write-wins per user+book.
type Progress struct {
	UserID          string    `json:"user_id"`
	BookID          string    `json:"book_id"`
	ChapterID       string    `json:"chapter_id"`
	PositionSeconds int       `json:"position_seconds"`
	UpdatedAt       time.Time `json:"updated_at"`
}
