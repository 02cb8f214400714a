package session

import "time"

type WalkSession struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	StartedAt  time.Time `json:"started_at"`
	EndedAt    time.Time `json:"ended_at,omitempty"`
	Status     string    `json:"status"`
	DistanceKm float64   `json:"distance_km"`
}

type RoutePoint struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	Lat        float64   `json:"lat"`
	Lng        float64   `json:"lng"`
	AccuracyM  float64   `json:"accuracy_m"`
	RecordedAt time.Time `json:"recorded_at"`
	Accepted   bool      `json:"accepted"`
	CreatedAt  time.Time `json:"created_at"`
}

// Record is the immutable summary frozen when a session ends.
type Record struct {
	SessionID       string       `json:"session_id"`
	UserID          string       `json:"user_id"`
	StartedAt       time.Time    `json:"started_at"`
	EndedAt         time.Time    `json:"ended_at"`
	DurationSeconds int64        `json:"duration_seconds"`
	Steps           int          `json:"steps"`
	DistanceKm      float64      `json:"distance_km"`
	PaceMinPerKm    float64      `json:"pace_min_per_km"`
	DistanceSource  string       `json:"distance_source"`
	Route           []RoutePoint `json:"route"`
}

type EndRequest struct {
	Steps int `json:"steps"`
}
