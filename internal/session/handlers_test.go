package session

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
)

func asUser(userID string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("user_id", userID)
		return c.Next()
	}
}

func TestSessionHandlers(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(`INSERT INTO active_sessions`).
		WithArgs(pgxmock.AnyArg(), "u1", pgxmock.AnyArg(), "active").
		WillReturnRows(pgxmock.NewRows([]string{"started_at", "status"}).AddRow(time.Now(), "active"))

	mock.ExpectQuery(`SELECT lat, lng FROM session_points`).
		WithArgs("s1").
		WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(`INSERT INTO session_points`).
		WithArgs("s1", -6.2, 106.8, 10.0, pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(1), time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock, nil, nil), asUser("u1"))

	req := httptest.NewRequest(http.MethodPost, "/sessions/", nil)
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("start status: %v %d", err, resp.StatusCode)
	}

	body, _ := json.Marshal(RoutePoint{Lat: -6.2, Lng: 106.8, AccuracyM: 10})
	req = httptest.NewRequest(http.MethodPost, "/sessions/s1/points", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusCreated {
		t.Fatalf("add point status: %v %d", err, resp.StatusCode)
	}
}

func TestAddPointHandlerDropped(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(nil, nil, nil), asUser("u1"))

	body, _ := json.Marshal(RoutePoint{Lat: -6.2, Lng: 106.8, AccuracyM: 500})
	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/points", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("expected 202 for dropped point, got %v %d", err, resp.StatusCode)
	}
}

func TestEndHandlerConflict(t *testing.T) {
	mock := newMockPool(t)

	endedAt := time.Now()
	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", endedAt.Add(-time.Hour), &endedAt, 1.0))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock, nil, nil), asUser("u1"))

	body, _ := json.Marshal(EndRequest{Steps: 100})
	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/end", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestEndHandlerForeignSessionForbidden(t *testing.T) {
	mock := newMockPool(t)

	startedAt := time.Now().Add(-time.Hour)
	mock.ExpectQuery(`SELECT id, user_id, started_at, ended_at, COALESCE\(distance_km,0\)`).
		WithArgs("s1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "started_at", "ended_at", "distance_km"}).
			AddRow("s1", "u1", startedAt, nil, 1.0))

	app := fiber.New()
	RegisterRoutes(app.Group("/sessions"), NewService(mock, nil, nil), asUser("u2"))

	body, _ := json.Marshal(EndRequest{Steps: 100})
	req := httptest.NewRequest(http.MethodPost, "/sessions/s1/end", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, _ := app.Test(req)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}
