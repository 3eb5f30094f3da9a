// Package httpapi exposes sync, health and recovery triggers over JSON. It
// does no authorization; callers sit behind the platform's own gateway.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	rr "github.com/gofiber/fiber/v2/middleware/recover"

	"meeting_sync/internal/domain"
)

type Syncer interface {
	SyncMeeting(ctx context.Context, meetingID int64, syncType domain.SyncType) (*domain.SyncResult, error)
	DeleteMeeting(ctx context.Context, meetingID int64) error
}

type HealthChecker interface {
	CheckMeeting(ctx context.Context, meetingID int64) (*domain.HealthReport, error)
	CheckSystem(ctx context.Context) (*domain.SystemHealth, error)
}

type Recoverer interface {
	AutoRecover(ctx context.Context, meetingID int64) (*domain.RecoveryReport, error)
}

type Enqueuer interface {
	EnqueueSync(ctx context.Context, task *domain.SyncTask) error
}

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

type Deps struct {
	Syncer   Syncer
	Health   HealthChecker
	Recovery Recoverer
	// Queue is optional; without it async sync requests are refused.
	Queue  Enqueuer
	Checks map[string]Check
}

type Config struct {
	MetricsPath string
}

type Server struct {
	deps   Deps
	logger *slog.Logger
}

func NewServer(deps Deps, logger *slog.Logger) *Server {
	return &Server{
		deps:   deps,
		logger: logger.With("component", "http"),
	}
}

func (s *Server) App(cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		AppName:               "meeting_sync",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	app.Use(logger.New(logger.Config{
		Done: func(c *fiber.Ctx, logString []byte) {
			s.logger.Debug(string(logString))
		},
		Format: "${status} | ${latency} | ${ip} | ${method} | ${path} | ${error}",
		Output: io.Discard,
	}))

	if cfg.MetricsPath != "" {
		prometheus := fiberprometheus.New("meeting_sync")
		prometheus.RegisterAt(app, cfg.MetricsPath)
		app.Use(prometheus.Middleware)
	}

	app.Use(rr.New())

	app.Get("/livez", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/readyz", s.ready)

	api := app.Group("/api/v1")
	api.Get("/health", s.systemHealth)

	meetings := api.Group("/meetings")
	meetings.Post("/:id/sync", s.sync)
	meetings.Get("/:id/health", s.meetingHealth)
	meetings.Post("/:id/recover", s.autoRecover)
	meetings.Delete("/:id", s.deleteMeeting)

	return app
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.Is(err, domain.ErrMeetingNotFound):
		code = fiber.StatusNotFound
	case errors.Is(err, domain.ErrSyncInProgress):
		code = fiber.StatusConflict
	case domain.KindOf(err) == domain.KindAuthFailure:
		code = fiber.StatusBadGateway
	}

	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err,
		)
	}
	return c.Status(code).JSON(errorResponse{Error: err.Error()})
}

func meetingID(c *fiber.Ctx) (int64, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid meeting id")
	}
	return int64(id), nil
}

func (s *Server) ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	failed := map[string]string{}
	for name, check := range s.deps.Checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ready": false, "failed": failed})
	}
	return c.JSON(fiber.Map{"ready": true})
}
