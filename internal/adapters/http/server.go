// Package http exposes the gateway over HTTP: the JSON-RPC endpoint, the
// REST status surface and the build trigger.
package http

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/melih/lighthouse-mcp/internal/core/ports"
	"github.com/melih/lighthouse-mcp/internal/logging"
	"github.com/melih/lighthouse-mcp/internal/mcp"
)

const requestIDKey = "requestid"

// Options configures the HTTP server.
type Options struct {
	Name           string
	Mode           string
	APIKey         string
	AllowedOrigins []string
	BodyLimit      int
}

// Server is the fiber application with all routes registered.
type Server struct {
	app     *fiber.App
	opts    Options
	engine  ports.ContainerService
	builder ports.BuilderService
	rpc     *mcp.Dispatcher
	log     *logging.Logger
	started time.Time
}

// NewServer wires routes and middleware. builder may be nil, in which case
// build requests are answered with 501.
func NewServer(opts Options, engine ports.ContainerService, builder ports.BuilderService, rpc *mcp.Dispatcher, log *logging.Logger) *Server {
	s := &Server{
		opts:    opts,
		engine:  engine,
		builder: builder,
		rpc:     rpc,
		log:     log,
		started: time.Now(),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               opts.Name,
		BodyLimit:             opts.BodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New(recover.Config{
		EnableStackTrace:  true,
		StackTraceHandler: s.logPanic,
	}))
	s.app.Use(requestid.New(requestid.Config{
		Generator:  uuid.NewString,
		ContextKey: requestIDKey,
	}))
	s.app.Use(s.accessLog)
	s.app.Use(helmet.New())
	if len(opts.AllowedOrigins) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(opts.AllowedOrigins, ","),
			AllowMethods: "GET,POST,OPTIONS",
			AllowHeaders: "Origin,Content-Type,Accept,x-api-key",
		}))
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	auth := APIKeyAuth(s.opts.APIKey)

	s.app.Get("/", s.index)
	s.app.Get("/health", s.health)

	s.app.Post("/mcp", auth, s.handleRPC)
	s.app.Get("/mcp/manifest", auth, s.manifest)

	containers := NewContainerHandler(s.opts.Name, s.engine, s.builder)

	v1 := s.app.Group("/v1")
	v1.Get("/", s.v1Index)
	v1.Get("/status", auth, containers.Status)
	v1.Get("/services", auth, containers.Services)
	v1.Get("/containers", auth, containers.ListContainers)
	v1.Post("/builds", auth, containers.Build)

	s.app.Get("/api/v1/status", auth, containers.LegacyStatus)
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

// Listen blocks serving on addr until Shutdown is called.
func (s *Server) Listen(addr string) error {
	s.log.Info().Str("addr", addr).Str("mode", s.opts.Mode).Msg("HTTP server listening")
	if err := s.app.Listen(addr); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) logPanic(c *fiber.Ctx, e interface{}) {
	s.log.Error().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Interface("panic", e).
		Bytes("stack", debug.Stack()).
		Msg("HTTP handler panicked")
}

func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	status := c.Response().StatusCode()
	if err != nil {
		status = fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}
	}

	requestID, _ := c.Locals(requestIDKey).(string)
	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", status).
		Dur("duration", time.Since(start)).
		Str("request_id", requestID).
		Msg("request")
	return err
}
