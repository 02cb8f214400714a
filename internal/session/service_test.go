package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

var errSession = errors.New("session test error")

type fakeStrides struct {
	strideM float64
	err     error
}

func (f *fakeStrides) StrideM(context.Context, string) (float64, error) {
	return f.strideM, f.err
}

func newMockPool(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	t.Cleanup(mock.Close)
	return mock
}

func TestStartAddPoint(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`INSERT INTO active_sessions`).
		WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg(), "active").
		WillReturnRows(pgxmock.NewRows([]string{"started_at", "status"}).AddRow(time.Now(), "active"))

	session, err := svc.Start(context.Background(), "u1")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if session.ID == "" || session.Status != "active" {
		t.Fatalf("unexpected session: %+v", session)
	}

	// First point has no predecessor, so no distance update happens.
	mock.ExpectQuery(`SELECT lat, lng FROM session_points`).
		WithArgs(session.ID).
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO session_points`).
		WithArgs(session.ID, -6.2, 106.8, 10.0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	point, err := svc.AddPoint(context.Background(), session.ID, RoutePoint{Lat: -6.2, Lng: 106.8, AccuracyM: 10})
	if err != nil {
		t.Fatalf("add point: %v", err)
	}
	if !point.Accepted || point.ID == 0 {
		t.Fatalf("expected accepted point, got %+v", point)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddPointAccumulatesDistance(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`SELECT lat, lng FROM session_points`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"lat", "lng"}).AddRow(-6.2, 106.8))
	mock.ExpectQuery(`INSERT INTO session_points`).
		WithArgs("s1", -6.1, 106.9, 5.0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(2), time.Now()))
	mock.ExpectExec(`UPDATE active_sessions`).
		WithArgs("s1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	_, err := svc.AddPoint(context.Background(), "s1", RoutePoint{Lat: -6.1, Lng: 106.9, AccuracyM: 5})
	if err != nil {
		t.Fatalf("add point: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAddPointDropsPoorAccuracy(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	point, err := svc.AddPoint(context.Background(), "s1", RoutePoint{Lat: -6.1, Lng: 106.9, AccuracyM: 120})
	if err != nil {
		t.Fatalf("add point: %v", err)
	}
	if point.Accepted {
		t.Fatalf("poor-accuracy point must be dropped")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("dropped point must not touch the database: %v", err)
	}
}

func TestEndFreezesRecord(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	startedAt := time.Now().Add(-30 * time.Minute)

	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", startedAt, nil, 2.5))
	mock.ExpectQuery(`SELECT id, session_id, lat, lng, accuracy_m, recorded_at, created_at`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "lat", "lng", "accuracy_m", "recorded_at", "created_at"}).
			AddRow(int64(1), "s1", -6.2, 106.8, 10.0, startedAt, startedAt))
	mock.ExpectExec(`INSERT INTO session_records`).
		WithArgs("s1", "u1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 3200, 2.5, pgxmock.AnyArg(), "gps", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE active_sessions SET ended_at`).
		WithArgs("s1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	record, err := svc.End(context.Background(), "s1", "u1", 3200)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if record.DistanceKm != 2.5 || record.DistanceSource != "gps" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.DurationSeconds < 1790 || record.DurationSeconds > 1810 {
		t.Fatalf("unexpected duration: %d", record.DurationSeconds)
	}
	// 30 minutes over 2.5 km = 12 min/km
	if record.PaceMinPerKm < 11.9 || record.PaceMinPerKm > 12.1 {
		t.Fatalf("unexpected pace: %v", record.PaceMinPerKm)
	}
	if len(record.Route) != 1 {
		t.Fatalf("expected route snapshot")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndFallsBackToStrideDistance(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, &fakeStrides{strideM: 0.75})

	startedAt := time.Now().Add(-10 * time.Minute)

	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", startedAt, nil, 0.0))
	mock.ExpectQuery(`SELECT id, session_id, lat, lng, accuracy_m, recorded_at, created_at`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "session_id", "lat", "lng", "accuracy_m", "recorded_at", "created_at"}))
	mock.ExpectExec(`INSERT INTO session_records`).
		WithArgs("s1", "u1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), 1000, 0.75, pgxmock.AnyArg(), "steps", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`UPDATE active_sessions SET ended_at`).
		WithArgs("s1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	record, err := svc.End(context.Background(), "s1", "u1", 1000)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if record.DistanceKm != 0.75 || record.DistanceSource != "steps" {
		t.Fatalf("expected stride fallback, got %+v", record)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEndTwiceIsRejected(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	endedAt := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", endedAt.Add(-time.Hour), &endedAt, 1.0))

	if _, err := svc.End(context.Background(), "s1", "u1", 100); !errors.Is(err, ErrSessionEnded) {
		t.Fatalf("expected ErrSessionEnded, got %v", err)
	}
}

func TestEndByNonOwnerIsRejected(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	startedAt := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", startedAt, nil, 1.0))

	if _, err := svc.End(context.Background(), "s1", "u2", 100); !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("a foreign session must not be written: %v", err)
	}
}

func TestStartError(t *testing.T) {
	mock := newMockPool(t)
	svc := NewService(mock, nil, nil)

	mock.ExpectQuery(`INSERT INTO active_sessions`).
		WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg(), "active").
		WillReturnError(errSession)

	if _, err := svc.Start(context.Background(), "u1"); err == nil {
		t.Fatalf("expected error")
	}
}
