package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/melih/lighthouse-mcp/internal/adapters/builder"
	"github.com/melih/lighthouse-mcp/internal/adapters/docker"
	httpadapter "github.com/melih/lighthouse-mcp/internal/adapters/http"
	"github.com/melih/lighthouse-mcp/internal/adapters/mock"
	"github.com/melih/lighthouse-mcp/internal/config"
	"github.com/melih/lighthouse-mcp/internal/core/ports"
	"github.com/melih/lighthouse-mcp/internal/logging"
	"github.com/melih/lighthouse-mcp/internal/mcp"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var (
		port int
		host string
		mode string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(port, host, mode)
			if err != nil {
				return err
			}

			root, closer, err := logging.Open(logging.Options{
				Level: cfg.Logging.Level,
				Style: cfg.Logging.Style,
				File:  cfg.Logging.File,
			})
			if err != nil {
				return err
			}
			defer closer.Close()
			log = root

			// Block until SIGINT/SIGTERM
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv, cleanup, err := buildServer(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			return run(ctx, srv, cfg.Server.Addr(), log)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides config)")
	cmd.Flags().StringVar(&host, "host", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&mode, "mode", "", "engine mode: live or mock (overrides config)")
	return cmd
}

// loadConfig merges file, environment and flag values, then validates.
func loadConfig(port int, host, mode string) (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return cfg, err
	}

	if port != 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if mode != "" {
		cfg.Engine.Mode = strings.ToLower(mode)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	issues := config.Validate(&cfg)
	if len(issues) > 0 {
		for _, issue := range issues {
			log.Error().Str("path", issue.Path).Msg(issue.Message)
		}
		return cfg, fmt.Errorf("config validation failed with %d issue(s)", len(issues))
	}
	return cfg, nil
}

// buildServer selects the engine for cfg.Engine.Mode and wires the HTTP
// server over it. The returned cleanup releases engine connections.
func buildServer(ctx context.Context, cfg config.Config, log *logging.Logger) (*httpadapter.Server, func(), error) {
	var (
		engine    ports.ContainerService
		builds    ports.BuilderService
		resources []mcp.Resource
		closers   []io.Closer
	)

	switch cfg.Engine.Mode {
	case config.ModeMock:
		m, err := mock.NewEngine(log.Sub("mock"))
		if err != nil {
			return nil, nil, err
		}
		engine = m
		resources = mcp.MockResources()
		log.Warn().Msg("serving fixture data; no container engine is contacted")

	case config.ModeLive:
		d, err := docker.NewAdapter(docker.Options{
			Host:        cfg.Engine.Host,
			StopTimeout: cfg.Engine.StopTimeout,
		}, log.Sub("docker"))
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, d)
		if err := d.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("container engine not reachable yet")
		}

		b, err := builder.NewBuilderAdapter(cfg.Engine.Host, log.Sub("builder"))
		if err != nil {
			d.Close()
			return nil, nil, err
		}
		engine = d
		builds = b
		resources = mcp.LiveResources()

	default:
		return nil, nil, fmt.Errorf("unknown engine mode %q", cfg.Engine.Mode)
	}

	rpc := mcp.NewDispatcher(engine, resources, log.Sub("mcp"))
	srv := httpadapter.NewServer(httpadapter.Options{
		Name:           cfg.Server.Name,
		Mode:           cfg.Engine.Mode,
		APIKey:         cfg.Auth.APIKey,
		AllowedOrigins: cfg.Server.Origins(),
		BodyLimit:      cfg.Server.BodyLimit,
	}, engine, builds, rpc, log.Sub("http"))

	cleanup := func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close engine client")
			}
		}
	}
	return srv, cleanup, nil
}

type listener interface {
	Listen(addr string) error
	Shutdown(ctx context.Context) error
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, srv listener, addr string, log *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}
