package storage

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/Outstandr/lovable-fit-sub000/internal/db"
)

type Service struct {
	db db.Querier
}

func NewService(db db.Querier) *Service {
	return &Service{db: db}
}

// SaveShareCard records a rendered session share image so the app can
// re-fetch it for social posting.
func (s *Service) SaveShareCard(ctx context.Context, userID, sessionID, url string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO share_cards (id, user_id, session_id, url)
		VALUES ($1,$2,$3,$4)
	`, id, userID, sessionID, url)
	if err != nil {
		return "", err
	}
	return id, nil
}

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Post("/share-cards", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var body struct {
			SessionID string `json:"session_id"`
			FileName  string `json:"file_name"`
		}
		_ = c.BodyParser(&body)
		if body.FileName == "" {
			body.FileName = "share-card.png"
		}
		url := "https://storage.example/share/" + body.FileName
		id, err := svc.SaveShareCard(c.Context(), userID, body.SessionID, url)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(fiber.Map{
			"id":         id,
			"url":        url,
			"expires_at": time.Now().Add(15 * time.Minute),
		})
	})
}
