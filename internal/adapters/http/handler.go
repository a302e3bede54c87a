package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/melih/lighthouse-mcp/internal/core/domain"
	"github.com/melih/lighthouse-mcp/internal/core/ports"
	"github.com/melih/lighthouse-mcp/internal/mcp"
)

type ContainerHandler struct {
	name    string
	service ports.ContainerService
	builder ports.BuilderService
}

func NewContainerHandler(name string, service ports.ContainerService, builder ports.BuilderService) *ContainerHandler {
	return &ContainerHandler{name: name, service: service, builder: builder}
}

// Status reports every container with its ports.
func (h *ContainerHandler) Status(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.UserContext(), true)
	if err != nil {
		return engineError(c, err)
	}

	services := make([]fiber.Map, 0, len(containers))
	for _, ct := range containers {
		services = append(services, fiber.Map{
			"name":   ct.Name,
			"status": ct.Status,
			"image":  ct.Image,
			"ports":  nonNilPorts(ct.Ports),
		})
	}
	return c.JSON(fiber.Map{
		"service":   h.name,
		"version":   "v1",
		"status":    "running",
		"services":  services,
		"memory":    mcp.MemorySnapshot(),
		"timestamp": timestamp(),
	})
}

// Services reports running containers only.
func (h *ContainerHandler) Services(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.UserContext(), false)
	if err != nil {
		return engineError(c, err)
	}

	services := make([]fiber.Map, 0, len(containers))
	for _, ct := range containers {
		services = append(services, fiber.Map{
			"name":    ct.Name,
			"status":  ct.Status,
			"image":   ct.Image,
			"created": ct.Created,
		})
	}
	return c.JSON(fiber.Map{
		"services":  services,
		"count":     len(services),
		"timestamp": timestamp(),
	})
}

func (h *ContainerHandler) ListContainers(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.UserContext(), true)
	if err != nil {
		return engineError(c, err)
	}
	if containers == nil {
		containers = []domain.Container{}
	}
	return c.JSON(fiber.Map{
		"containers": containers,
		"count":      len(containers),
		"timestamp":  timestamp(),
	})
}

// LegacyStatus keeps the shape served under /api/v1/status.
func (h *ContainerHandler) LegacyStatus(c *fiber.Ctx) error {
	containers, err := h.service.ListContainers(c.UserContext(), true)
	if err != nil {
		return engineError(c, err)
	}

	services := make([]fiber.Map, 0, len(containers))
	for _, ct := range containers {
		services = append(services, fiber.Map{
			"name":   ct.Name,
			"status": ct.Status,
			"image":  ct.Image,
		})
	}
	return c.JSON(fiber.Map{
		"service":   h.name,
		"status":    "running",
		"services":  services,
		"memory":    mcp.MemorySnapshot(),
		"timestamp": timestamp(),
	})
}

// Build clones a repository and builds its image. This blocks until the
// engine finishes.
func (h *ContainerHandler) Build(c *fiber.Ctx) error {
	if h.builder == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{
			"error": "Image builds are not available in mock mode",
		})
	}

	var req domain.BuildRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if err := req.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	res, err := h.builder.BuildImage(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Build failed: " + err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(res)
}

func engineError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func nonNilPorts(p []domain.Port) []domain.Port {
	if p == nil {
		return []domain.Port{}
	}
	return p
}
