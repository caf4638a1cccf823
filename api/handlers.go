package api

import (
	"time"

	"github.com/CristiGvl/picoHWMQTT/internal/platform"
	"github.com/gofiber/fiber/v2"
)

// Health check endpoint
func (s *Server) healthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"platform":  platform.GetOS(),
		"timestamp": time.Now().Unix(),
	})
}

// Connection and window summary
func (s *Server) getStatus(c *fiber.Ctx) error {
	snap := s.store.Get()

	resp := fiber.Map{
		"connected":      snap.Connected,
		"window_samples": snap.Samples,
	}
	if !snap.ConnectedAt.IsZero() {
		resp["connected_at"] = snap.ConnectedAt.UTC().Format(time.RFC3339)
	}
	if !snap.FlushedAt.IsZero() {
		resp["flushed_at"] = snap.FlushedAt.UTC().Format(time.RFC3339)
	}

	return c.JSON(resp)
}

// Last published window
func (s *Server) getMetrics(c *fiber.Ctx) error {
	snap := s.store.Get()
	if snap.FlushedAt.IsZero() {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "no window flushed yet"})
	}

	return c.JSON(snap)
}
