package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
	"github.com/Outstandr/lovable-fit-sub000/internal/shared/geo"
	"github.com/Outstandr/lovable-fit-sub000/internal/stream"
)

// GPS fixes worse than this are dropped rather than folded into distance.
const maxAccuracyM = 50.0

var (
	ErrSessionEnded = errors.New("session already ended")
	ErrNotOwner     = errors.New("session belongs to another user")
)

// StrideSource provides the stride length used for the step-based distance
// fallback. Satisfied by *profile.Service.
type StrideSource interface {
	StrideM(ctx context.Context, userID string) (float64, error)
}

type Service struct {
	db      db.Querier
	hub     *stream.Hub
	strides StrideSource
}

func NewService(db db.Querier, hub *stream.Hub, strides StrideSource) *Service {
	return &Service{db: db, hub: hub, strides: strides}
}

func (s *Service) Start(ctx context.Context, userID string) (WalkSession, error) {
	session := WalkSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now(),
		Status:    "active",
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO active_sessions (id, user_id, started_at, status)
		VALUES ($1,$2,$3,$4)
		RETURNING started_at, status
	`, session.ID, session.UserID, session.StartedAt, session.Status)
	if err := row.Scan(&session.StartedAt, &session.Status); err != nil {
		return WalkSession{}, err
	}
	return session, nil
}

// AddPoint appends one GPS sample to an active session and folds the hop
// from the previous sample into the running distance. Distance only ever
// grows; samples with a poor fix are dropped.
func (s *Service) AddPoint(ctx context.Context, sessionID string, input RoutePoint) (RoutePoint, error) {
	if input.RecordedAt.IsZero() {
		input.RecordedAt = time.Now()
	}
	input.SessionID = sessionID

	if input.AccuracyM > maxAccuracyM {
		input.Accepted = false
		return input, nil
	}
	input.Accepted = true

	var lastLat, lastLng float64
	hadPrevious := true
	err := s.db.QueryRow(ctx, `
		SELECT lat, lng FROM session_points
		WHERE session_id=$1
		ORDER BY recorded_at DESC
		LIMIT 1
	`, sessionID).Scan(&lastLat, &lastLng)
	if err != nil {
		hadPrevious = false
	}

	row := s.db.QueryRow(ctx, `
		INSERT INTO session_points (session_id, lat, lng, accuracy_m, recorded_at)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id, created_at
	`, sessionID, input.Lat, input.Lng, input.AccuracyM, input.RecordedAt)
	if err := row.Scan(&input.ID, &input.CreatedAt); err != nil {
		return RoutePoint{}, err
	}

	if hadPrevious {
		deltaKm := geo.HaversineKm(lastLat, lastLng, input.Lat, input.Lng)
		if deltaKm > 0 {
			_, _ = s.db.Exec(ctx, `
				UPDATE active_sessions
				SET distance_km = COALESCE(distance_km,0) + $2
				WHERE id=$1
			`, sessionID, deltaKm)
		}
	}

	if s.hub != nil {
		payload, _ := json.Marshal(input)
		s.hub.Broadcast(sessionID, payload)
	}
	return input, nil
}

// End freezes a session into an immutable record. Only the session's owner
// may end it. With no usable GPS distance the record falls back to steps
// times the user's stride length.
func (s *Service) End(ctx context.Context, sessionID, userID string, stepCount int) (Record, error) {
	var session WalkSession
	var endedAt *time.Time
	row := s.db.QueryRow(ctx, `
		SELECT id, user_id, started_at, ended_at, COALESCE(distance_km,0)
		FROM active_sessions WHERE id=$1
	`, sessionID)
	if err := row.Scan(&session.ID, &session.UserID, &session.StartedAt, &endedAt, &session.DistanceKm); err != nil {
		return Record{}, err
	}
	if session.UserID != userID {
		return Record{}, ErrNotOwner
	}
	if endedAt != nil {
		return Record{}, ErrSessionEnded
	}

	now := time.Now()
	record := Record{
		SessionID:      session.ID,
		UserID:         session.UserID,
		StartedAt:      session.StartedAt,
		EndedAt:        now,
		Steps:          stepCount,
		DistanceKm:     session.DistanceKm,
		DistanceSource: "gps",
	}
	record.DurationSeconds = int64(now.Sub(session.StartedAt).Seconds())

	if record.DistanceKm == 0 && stepCount > 0 && s.strides != nil {
		strideM, err := s.strides.StrideM(ctx, session.UserID)
		if err == nil && strideM > 0 {
			record.DistanceKm = float64(stepCount) * strideM / 1000
			record.DistanceSource = "steps"
		}
	}

	if record.DistanceKm > 0 {
		record.PaceMinPerKm = float64(record.DurationSeconds) / 60 / record.DistanceKm
	}

	route, err := s.Points(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	record.Route = route

	snapshot, err := json.Marshal(route)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO session_records (session_id, user_id, started_at, ended_at, duration_seconds, steps, distance_km, pace_min_per_km, distance_source, route)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, record.SessionID, record.UserID, record.StartedAt, record.EndedAt, record.DurationSeconds,
		record.Steps, record.DistanceKm, record.PaceMinPerKm, record.DistanceSource, snapshot)
	if err != nil {
		return Record{}, err
	}

	_, err = s.db.Exec(ctx, `
		UPDATE active_sessions SET ended_at=$2, status='ended' WHERE id=$1
	`, sessionID, now)
	if err != nil {
		return Record{}, err
	}
	return record, nil
}

func (s *Service) Points(ctx context.Context, sessionID string) ([]RoutePoint, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, lat, lng, accuracy_m, recorded_at, created_at
		FROM session_points WHERE session_id=$1
		ORDER BY recorded_at
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var points []RoutePoint
	for rows.Next() {
		p := RoutePoint{Accepted: true}
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Lat, &p.Lng, &p.AccuracyM, &p.RecordedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		points = append(points, p)
	}
	return points, nil
}

func (s *Service) Records(ctx context.Context, userID string) ([]Record, error) {
	rows, err := s.db.Query(ctx, `
		SELECT session_id, user_id, started_at, ended_at, duration_seconds, steps, distance_km, pace_min_per_km, distance_source
		FROM session_records WHERE user_id=$1
		ORDER BY started_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.SessionID, &r.UserID, &r.StartedAt, &r.EndedAt, &r.DurationSeconds, &r.Steps, &r.DistanceKm, &r.PaceMinPerKm, &r.DistanceSource); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
