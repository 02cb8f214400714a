package storage

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/pashagolub/pgxmock/v3"
)

func TestSaveShareCard(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO share_cards`).
		WithArgs(pgxmock.AnyArg(), "u1", "s1", "https://storage.example/share/walk.png").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	svc := NewService(mock)
	id, err := svc.SaveShareCard(context.Background(), "u1", "s1", "https://storage.example/share/walk.png")
	if err != nil || id == "" {
		t.Fatalf("save: %v %q", err, id)
	}
}

func TestShareCardHandler(t *testing.T) {
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("mock pool: %v", err)
	}
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO share_cards`).
		WithArgs(pgxmock.AnyArg(), "u1", "s1", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	app := fiber.New()
	RegisterRoutes(app.Group("/storage"), NewService(mock), func(c *fiber.Ctx) error {
		c.Locals("user_id", "u1")
		return c.Next()
	})

	req := httptest.NewRequest(http.MethodPost, "/storage/share-cards", bytes.NewReader([]byte(`{"session_id":"s1","file_name":"walk.png"}`)))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("share card status: %v %d", err, resp.StatusCode)
	}
}
