package ports

import (
	"context"

	"github.com/melih/lighthouse-mcp/internal/core/domain"
)

// ContainerService defines the container engine operations the gateway needs.
// The live Docker adapter and the fixture-backed mock both implement it, so
// the dispatcher never knows which engine it is talking to.
//
// Lookups by name return *domain.NotFoundError on a miss.
type ContainerService interface {
	ListContainers(ctx context.Context, all bool) ([]domain.Container, error)
	InspectContainer(ctx context.Context, name string) (domain.ContainerDetail, error)
	StartContainer(ctx context.Context, name string) error
	StopContainer(ctx context.Context, name string) error
	RestartContainer(ctx context.Context, name string) error
	GetContainerLogs(ctx context.Context, name string, tail int) (string, error)
	ListNetworks(ctx context.Context) ([]domain.Network, error)
	ListVolumes(ctx context.Context) ([]domain.Volume, error)
}
