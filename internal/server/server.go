package server

import (
	"time"

	"github.com/Outstandr/lovable-fit-sub000/internal/audiobook"
	"github.com/Outstandr/lovable-fit-sub000/internal/auth"
	"github.com/Outstandr/lovable-fit-sub000/internal/config"
	"github.com/Outstandr/lovable-fit-sub000/internal/leaderboard"
	"github.com/Outstandr/lovable-fit-sub000/internal/profile"
	"github.com/Outstandr/lovable-fit-sub000/internal/session"
	"github.com/Outstandr/lovable-fit-sub000/internal/steps"
	"github.com/Outstandr/lovable-fit-sub000/internal/storage"
	"github.com/Outstandr/lovable-fit-sub000/internal/streak"
	"github.com/Outstandr/lovable-fit-sub000/internal/stream"
	"github.com/Outstandr/lovable-fit-sub000/internal/tasks"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type Server struct {
	App    *fiber.App
	Cfg    config.Config
	DB     *pgxpool.Pool
	Redis  *redis.Client
	Stream *stream.Hub
}

func NewServer(cfg config.Config, db *pgxpool.Pool, redisClient *redis.Client) *Server {
	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())

	s := &Server{
		App:    app,
		Cfg:    cfg,
		DB:     db,
		Redis:  redisClient,
		Stream: stream.NewHub(redisClient),
	}

	registerRoutes(s)
	return s
}

func registerRoutes(s *Server) {
	s.App.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	jwtMiddleware := auth.JWTMiddleware(s.Cfg.JWTSecret)

	profiles := profile.NewService(s.DB, s.Cfg.DefaultGoal)
	streaks := streak.NewService(s.DB)
	cacheTTL := time.Duration(s.Cfg.LeaderboardTTL) * time.Second

	auth.RegisterRoutes(s.App.Group("/auth"), auth.NewService(s.Cfg.JWTSecret, s.DB))
	profile.RegisterRoutes(s.App.Group("/profile"), profiles, jwtMiddleware)
	steps.RegisterRoutes(s.App.Group("/steps"), steps.NewService(s.DB, streaks), jwtMiddleware)
	session.RegisterRoutes(s.App.Group("/sessions"), session.NewService(s.DB, s.Stream, profiles), jwtMiddleware)
	leaderboard.RegisterRoutes(s.App.Group("/leaderboard"), leaderboard.NewService(s.DB, s.Redis, cacheTTL), jwtMiddleware)
	tasks.RegisterRoutes(s.App.Group("/tasks"), tasks.NewService(s.DB), jwtMiddleware)
	audiobook.RegisterRoutes(s.App.Group("/audiobooks"), audiobook.NewService(s.DB), jwtMiddleware)
	storage.RegisterRoutes(s.App.Group("/storage"), storage.NewService(s.DB), jwtMiddleware)
	stream.RegisterRoutes(s.App.Group("/stream"), s.Stream)
}
