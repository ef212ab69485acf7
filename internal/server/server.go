// Package server exposes the advisor over HTTP.
package server

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/spigell/contest-guide/internal/advisor"
	"github.com/spigell/contest-guide/internal/config"
)

// bodyLimit leaves room for multipart framing around a maximal image, so that
// oversized images reach the handler and get the descriptive error.
const bodyLimit = 32 * 1024 * 1024

type Server struct {
	app     *fiber.App
	service *advisor.Service
	logger  *zap.Logger
	addr    string
}

func New(cfg *config.ServerConfig, service *advisor.Service, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	s := &Server{
		service: service,
		logger:  log,
		addr:    cfg.Addr(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:   config.App,
		BodyLimit: bodyLimit,
		ErrorHandler: func(c fiber.Ctx, err error) error {
			return writeError(log, c, err)
		},
	})

	s.app.Use(accessLog(log))
	s.app.Use(errorMiddleware(log))
	s.app.Use(corsMiddleware(cfg.AllowedOrigins()))

	s.registerRoutes(s.app)

	return s
}

func (s *Server) registerRoutes(r fiber.Router) {
	r.Get("/health", s.health)
	r.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	r.Post("/analyze", s.analyze)
	r.Post("/extract", s.extract)
	r.Post("/assistant/suggest", s.suggest)
	r.Post("/readiness", s.readiness)
}

func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks until the server stops.
func (s *Server) Listen() error {
	s.logger.Info("starting HTTP server",
		zap.String("addr", s.addr),
		zap.String("ai_mode", string(s.service.Mode())),
		zap.String("model", s.service.Model()),
	)
	return s.app.Listen(s.addr, fiber.ListenConfig{DisableStartupMessage: true})
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
