package api

import (
	"time"

	"github.com/CristiGvl/picoHWMQTT/internal/status"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server represents the local status API
type Server struct {
	app      *fiber.App
	store    *status.Store
	gatherer prometheus.Gatherer
}

// NewServer creates a new status API server reading from store
func NewServer(store *status.Store, gatherer prometheus.Gatherer) *Server {
	app := fiber.New(fiber.Config{
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		IdleTimeout:           60 * time.Second,
		ServerHeader:          "picoHWMQTT",
		AppName:               "picoHWMQTT v1.0",
		DisableStartupMessage: true,
	})

	// Middleware
	app.Use(logger.New())

	server := &Server{
		app:      app,
		store:    store,
		gatherer: gatherer,
	}

	server.setupRoutes()
	return server
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.app.Group("/api")

	api.Get("/health", s.healthCheck)
	api.Get("/status", s.getStatus)
	api.Get("/metrics", s.getMetrics)

	// Prometheus exposition of the agent's own metrics
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
}

// Start starts the API server
func (s *Server) Start(address string) error {
	return s.app.Listen(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
