package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/keyvend/keyvend/internal/config"
	"github.com/keyvend/keyvend/internal/intent"
	"github.com/keyvend/keyvend/internal/routes"
)

// Server wraps the Fiber application, shared dependencies, and the intent
// expiry sweep.
type Server struct {
	app     *fiber.App
	cfg     config.Config
	db      *pgxpool.Pool
	cache   *redis.Client
	sweeper *intent.Sweeper
}

// New instantiates the HTTP server, delegates route wiring to routes.Setup,
// and schedules the deposit-intent expiry sweep.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	tracker, err := routes.Setup(app, routes.Deps{Cfg: cfg, DB: db, Cache: cache, Logger: logger})
	if err != nil {
		return nil, err
	}

	sweeper, err := intent.NewSweeper(tracker, cfg.SweepSchedule, cfg.IntentTTL, logger)
	if err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg, db: db, cache: cache, sweeper: sweeper}, nil
}

// Listen starts the background sweep and the HTTP server.
func (s *Server) Listen() error {
	s.sweeper.Start()
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server and waits for an in-flight sweep.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}

	select {
	case <-s.sweeper.Stop().Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}
