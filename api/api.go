package api

import (
	"errors"
	"log/slog"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"

	"github.com/papercomputeco/quire/pkg/auth"
	"github.com/papercomputeco/quire/pkg/research"
	"github.com/papercomputeco/quire/pkg/storage"
)

// Server is the API server for the quire research service
type Server struct {
	config Config
	driver storage.Driver
	runner *research.Runner
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with the worker pool.
func NewServer(config Config, driver storage.Driver, logger *slog.Logger) (*Server, error) {
	if driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	if config.NewStreamer == nil {
		return nil, errors.New("research streamer is required")
	}
	if config.Verifier == nil {
		config.Verifier = auth.NewVerifier("")
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	app.Use(compress.New())

	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
		runner: &research.Runner{
			Subscriptions: driver,
			History:       driver,
			Jobs:          config.Jobs,
			Logger:        logger,
		},
	}

	app.Get("/ping", s.handlePing)
	app.Get("/v1/plans", s.handleListPlans)
	app.Post("/v1/render", s.handleRender)

	v1 := app.Group("/v1", s.authenticate)
	v1.Post("/research", s.handleResearch)
	v1.Get("/usage", s.handleUsage)
	v1.Get("/history", s.handleListHistory)
	v1.Delete("/history", s.handleClearHistory)
	v1.Get("/history/:id", s.handleGetHistory)
	v1.Get("/history/:id/export", s.handleExportHistory)

	if config.MCPHandler != nil {
		app.All("/mcp", adaptor.HTTPHandler(config.MCPHandler))
	}

	return s, nil
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
