package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/lighthouse-mcp/internal/version"
)

// mcpProtocolVersion is the protocol revision advertised by the manifest.
const mcpProtocolVersion = "0.1.0"

func (s *Server) index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"service": s.opts.Name,
		"version": version.Version,
		"status":  "running",
		"mode":    s.opts.Mode,
		"endpoints": fiber.Map{
			"health":   "/health",
			"mcp":      "/mcp",
			"manifest": "/mcp/manifest",
			"status":   "/v1/status",
			"v1":       "/v1",
		},
	})
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": timestamp(),
		"uptime":    time.Since(s.started).Seconds(),
		"version":   version.Version,
		"mode":      s.opts.Mode,
	})
}

func (s *Server) v1Index(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"version": "v1",
		"endpoints": fiber.Map{
			"status":     "/v1/status",
			"services":   "/v1/services",
			"containers": "/v1/containers",
			"builds":     "/v1/builds",
		},
	})
}

func (s *Server) manifest(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":        s.opts.Name,
		"version":     version.Version,
		"description": "Container lifecycle tools over the Model Context Protocol",
		"mcp": fiber.Map{
			"version": mcpProtocolVersion,
			"capabilities": fiber.Map{
				"resources": true,
				"tools":     true,
				"logging":   true,
			},
		},
	})
}

func (s *Server) handleRPC(c *fiber.Ctx) error {
	// JSON-RPC failures travel in the envelope, so the status is always 200.
	return c.JSON(s.rpc.Handle(c.UserContext(), c.Body()))
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
