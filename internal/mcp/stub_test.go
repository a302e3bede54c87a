package mcp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/melih/lighthouse-mcp/internal/core/domain"
)

// stubEngine is an in-memory ports.ContainerService that records calls.
type stubEngine struct {
	mu         sync.Mutex
	calls      []string
	containers []domain.Container
	networks   []domain.Network
	volumes    []domain.Volume
	logs       string
	lastTail   int
	lastAll    bool
	err        error
	panicOn    string
}

func newStubEngine() *stubEngine {
	return &stubEngine{
		containers: []domain.Container{
			{ID: "aaa111", Name: "web", Status: domain.StateRunning, Image: "nginx:latest",
				Ports:   []domain.Port{{IP: "0.0.0.0", PrivatePort: 80, PublicPort: 8080, Type: "tcp"}},
				Created: time.Unix(1754126011, 0).UTC()},
			{ID: "bbb222", Name: "db", Status: domain.StateExited, Image: "postgres:16",
				Ports: []domain.Port{}, Created: time.Unix(1754110776, 0).UTC()},
		},
		logs: "line one\nline two\n",
	}
}

func (s *stubEngine) record(call string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.panicOn == call {
		panic("boom in " + call)
	}
	return s.err
}

func (s *stubEngine) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *stubEngine) find(name string) (domain.Container, bool) {
	for _, c := range s.containers {
		if c.Name == name {
			return c, true
		}
	}
	return domain.Container{}, false
}

func (s *stubEngine) ListContainers(_ context.Context, all bool) ([]domain.Container, error) {
	if err := s.record("list"); err != nil {
		return nil, err
	}
	s.lastAll = all
	if all {
		return s.containers, nil
	}
	var running []domain.Container
	for _, c := range s.containers {
		if c.IsRunning() {
			running = append(running, c)
		}
	}
	return running, nil
}

func (s *stubEngine) InspectContainer(_ context.Context, name string) (domain.ContainerDetail, error) {
	if err := s.record("inspect"); err != nil {
		return domain.ContainerDetail{}, err
	}
	c, ok := s.find(name)
	if !ok {
		return domain.ContainerDetail{}, &domain.NotFoundError{Name: name}
	}
	return domain.ContainerDetail{Container: c, Running: c.IsRunning()}, nil
}

func (s *stubEngine) lifecycle(call, name string) error {
	if err := s.record(call); err != nil {
		return err
	}
	if _, ok := s.find(name); !ok {
		return &domain.NotFoundError{Name: name}
	}
	return nil
}

func (s *stubEngine) StartContainer(_ context.Context, name string) error {
	return s.lifecycle("start", name)
}

func (s *stubEngine) StopContainer(_ context.Context, name string) error {
	return s.lifecycle("stop", name)
}

func (s *stubEngine) RestartContainer(_ context.Context, name string) error {
	return s.lifecycle("restart", name)
}

func (s *stubEngine) GetContainerLogs(_ context.Context, name string, tail int) (string, error) {
	if err := s.lifecycle("logs", name); err != nil {
		return "", err
	}
	s.lastTail = tail
	return s.logs, nil
}

func (s *stubEngine) ListNetworks(context.Context) ([]domain.Network, error) {
	if err := s.record("networks"); err != nil {
		return nil, err
	}
	return s.networks, nil
}

func (s *stubEngine) ListVolumes(context.Context) ([]domain.Volume, error) {
	if err := s.record("volumes"); err != nil {
		return nil, err
	}
	return s.volumes, nil
}

var errEngineDown = errors.New("Cannot connect to the Docker daemon at unix:///var/run/docker.sock")
