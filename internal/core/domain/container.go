package domain

import (
	"fmt"
	"time"
)

// Container represents a container in the system (Docker, mock fixtures, etc.)
type Container struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Status     string    `json:"status"` // running, exited, paused, restarting, ...
	StatusText string    `json:"status_text,omitempty"`
	Image      string    `json:"image"`
	Ports      []Port    `json:"ports"`
	Created    time.Time `json:"created"`
}

// Port is a published or exposed container port. Keys keep the engine's
// native spelling so callers of the old servers see the same shape.
type Port struct {
	IP          string `json:"IP,omitempty"`
	PrivatePort uint16 `json:"PrivatePort"`
	PublicPort  uint16 `json:"PublicPort,omitempty"`
	Type        string `json:"Type"`
}

// ContainerDetail is the result of inspecting a single container.
type ContainerDetail struct {
	Container
	Running      bool   `json:"running"`
	Paused       bool   `json:"paused"`
	Restarting   bool   `json:"restarting"`
	ExitCode     int    `json:"exit_code"`
	RestartCount int    `json:"restart_count"`
	StartedAt    string `json:"started_at,omitempty"`
	FinishedAt   string `json:"finished_at,omitempty"`
	Health       string `json:"health,omitempty"`
}

// IsRunning reports whether the container is in the running state.
func (c Container) IsRunning() bool {
	return c.Status == StateRunning
}

// Container states as reported by the engine.
const (
	StateCreated    = "created"
	StateRunning    = "running"
	StatePaused     = "paused"
	StateRestarting = "restarting"
	StateExited     = "exited"
	StateDead       = "dead"
)

// NotFoundError is returned by engine adapters when a container lookup misses.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("Container %s not found", e.Name)
}
