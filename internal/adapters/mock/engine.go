// Package mock implements ports.ContainerService over static fixtures, for
// demos and environments without a container engine.
package mock

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/melih/lighthouse-mcp/internal/core/domain"
	"github.com/melih/lighthouse-mcp/internal/logging"
	"gopkg.in/yaml.v3"
)

//go:embed fixtures.yaml
var defaultFixtures []byte

// Fixtures is the on-disk shape of the mock engine state.
type Fixtures struct {
	Containers []ContainerFixture `yaml:"containers"`
	Networks   []domain.Network   `yaml:"networks"`
	Volumes    []domain.Volume    `yaml:"volumes"`
}

// ContainerFixture is a container plus its canned log lines.
type ContainerFixture struct {
	ID         string        `yaml:"id"`
	Name       string        `yaml:"name"`
	Status     string        `yaml:"status"`
	StatusText string        `yaml:"statusText"`
	Image      string        `yaml:"image"`
	Created    int64         `yaml:"created"`
	Ports      []PortFixture `yaml:"ports"`
	Logs       []string      `yaml:"logs"`
}

// PortFixture is a port binding in fixture form.
type PortFixture struct {
	IP          string `yaml:"ip"`
	PrivatePort uint16 `yaml:"privatePort"`
	PublicPort  uint16 `yaml:"publicPort"`
	Type        string `yaml:"type"`
}

// Engine serves fixture data. Lifecycle calls mutate the in-memory state so
// a stop followed by a list behaves like a real engine would.
type Engine struct {
	mu         sync.RWMutex
	containers []ContainerFixture
	networks   []domain.Network
	volumes    []domain.Volume
	log        *logging.Logger
}

// NewEngine builds an engine over the bundled fixtures.
func NewEngine(log *logging.Logger) (*Engine, error) {
	return NewEngineFromYAML(defaultFixtures, log)
}

// NewEngineFromYAML builds an engine over fixtures encoded as YAML.
func NewEngineFromYAML(data []byte, log *logging.Logger) (*Engine, error) {
	var f Fixtures
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse mock fixtures: %w", err)
	}

	seen := make(map[string]bool, len(f.Containers))
	for _, c := range f.Containers {
		if c.Name == "" {
			return nil, fmt.Errorf("failed to parse mock fixtures: container %q has no name", c.ID)
		}
		if seen[c.Name] {
			return nil, fmt.Errorf("failed to parse mock fixtures: duplicate container %q", c.Name)
		}
		seen[c.Name] = true
	}

	return &Engine{
		containers: f.Containers,
		networks:   f.Networks,
		volumes:    f.Volumes,
		log:        log,
	}, nil
}

// ListContainers returns fixtures in file order.
func (e *Engine) ListContainers(_ context.Context, all bool) ([]domain.Container, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	result := make([]domain.Container, 0, len(e.containers))
	for _, c := range e.containers {
		if !all && c.Status != domain.StateRunning {
			continue
		}
		result = append(result, c.toDomain())
	}
	return result, nil
}

// InspectContainer returns the fixture named name.
func (e *Engine) InspectContainer(_ context.Context, name string) (domain.ContainerDetail, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.find(name)
	if !ok {
		return domain.ContainerDetail{}, &domain.NotFoundError{Name: name}
	}
	return domain.ContainerDetail{
		Container:  c.toDomain(),
		Running:    c.Status == domain.StateRunning,
		Paused:     c.Status == domain.StatePaused,
		Restarting: c.Status == domain.StateRestarting,
	}, nil
}

// StartContainer marks the container running. Starting a running container
// is a no-op, as with Docker.
func (e *Engine) StartContainer(_ context.Context, name string) error {
	return e.transition(name, "start", func(c *ContainerFixture) {
		c.Status = domain.StateRunning
		c.StatusText = "Up Less than a second"
	})
}

// StopContainer marks the container exited.
func (e *Engine) StopContainer(_ context.Context, name string) error {
	return e.transition(name, "stop", func(c *ContainerFixture) {
		c.Status = domain.StateExited
		c.StatusText = "Exited (0) Less than a second ago"
	})
}

// RestartContainer marks the container running.
func (e *Engine) RestartContainer(_ context.Context, name string) error {
	return e.transition(name, "restart", func(c *ContainerFixture) {
		c.Status = domain.StateRunning
		c.StatusText = "Up Less than a second"
	})
}

// GetContainerLogs returns up to tail canned lines.
func (e *Engine) GetContainerLogs(_ context.Context, name string, tail int) (string, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	c, ok := e.find(name)
	if !ok {
		return "", &domain.NotFoundError{Name: name}
	}
	lines := c.Logs
	if tail < len(lines) {
		lines = lines[len(lines)-tail:]
	}
	if len(lines) == 0 {
		return "", nil
	}
	return strings.Join(lines, "\n") + "\n", nil
}

// ListNetworks returns the fixture networks.
func (e *Engine) ListNetworks(context.Context) ([]domain.Network, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Network{}, e.networks...), nil
}

// ListVolumes returns the fixture volumes.
func (e *Engine) ListVolumes(context.Context) ([]domain.Volume, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]domain.Volume{}, e.volumes...), nil
}

func (e *Engine) transition(name, action string, apply func(*ContainerFixture)) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := slices.IndexFunc(e.containers, func(c ContainerFixture) bool { return c.Name == name })
	if idx < 0 {
		return &domain.NotFoundError{Name: name}
	}
	apply(&e.containers[idx])
	e.log.Info().Str("container", name).Str("action", action).Msg("mock container transition")
	return nil
}

// find must be called with mu held.
func (e *Engine) find(name string) (ContainerFixture, bool) {
	idx := slices.IndexFunc(e.containers, func(c ContainerFixture) bool { return c.Name == name })
	if idx < 0 {
		return ContainerFixture{}, false
	}
	return e.containers[idx], true
}

func (c ContainerFixture) toDomain() domain.Container {
	ports := make([]domain.Port, 0, len(c.Ports))
	for _, p := range c.Ports {
		ports = append(ports, domain.Port(p))
	}
	return domain.Container{
		ID:         c.ID,
		Name:       c.Name,
		Status:     c.Status,
		StatusText: c.StatusText,
		Image:      c.Image,
		Ports:      ports,
		Created:    time.Unix(c.Created, 0).UTC(),
	}
}
