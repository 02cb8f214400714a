package audiobook

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestProgressHandlers(t *testing.T) {
	mock := newMockPool(t)

	mock.ExpectQuery(`INSERT INTO audiobook_progress`).
		WithArgs("u1", "b1", "c1", 120).
		WillReturnRows(pgxmock.NewRows([]string{"updated_at"}).AddRow(time.Now()))
	mock.ExpectQuery(`SELECT chapter_id, position_seconds, updated_at`).
		WithArgs("u1", "b1").
		WillReturnRows(pgxmock.NewRows([]string{"chapter_id", "position_seconds", "updated_at"}).
			AddRow("c1", 120, time.Now()))

	app := fiber.New()
	RegisterRoutes(app.Group("/audiobooks"), NewService(mock), func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return c.Next()
	})

	body, _ := json.Marshal(Progress{ChapterID: "c1", PositionSeconds: 120})
	req := httptest.NewRequest(http.MethodPut, "/audiobooks/b1/progress", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("save progress status: %v %d", err, resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/audiobooks/b1/progress", nil)
	resp, err = app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("resume status: %v %d", err, resp.StatusCode)
	}

	var p Progress
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.PositionSeconds != 120 {
		t.Fatalf("unexpected progress: %+v", p)
	}
}
