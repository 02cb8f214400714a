package steps

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(r fiber.Router, svc *Service, authMiddleware fiber.Handler) {
	r.Put("/daily", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		var req ReportRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if req.Day == "" {
			req.Day = time.Now().Format(dateLayout)
		}
		record, err := svc.ReportDaily(c.Context(), userID, req.Day, req.Steps)
		if err != nil {
			if errors.Is(err, ErrInvalidDay) || errors.Is(err, ErrNegativeSteps) {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(record)
	})

	r.Get("/today", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		day := c.Query("day", time.Now().Format(dateLayout))
		record, err := svc.Day(c.Context(), userID, day)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(record)
	})

	r.Get("/history", authMiddleware, func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(string)
		from := c.Query("from")
		to := c.Query("to", time.Now().Format(dateLayout))
		if from == "" {
			return fiber.NewError(fiber.StatusBadRequest, "from required")
		}
		history, err := svc.History(c.Context(), userID, from, to)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, err.Error())
		}
		return c.JSON(history)
	})
}
