package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	"github.com/melih/lighthouse-mcp/internal/core/domain"
	"github.com/melih/lighthouse-mcp/internal/logging"
)

// engineAPI is the subset of the Docker API client the adapter uses.
type engineAPI interface {
	Ping(ctx context.Context) (types.Ping, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRestart(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	NetworkList(ctx context.Context, options types.NetworkListOptions) ([]types.NetworkResource, error)
	VolumeList(ctx context.Context, options volume.ListOptions) (volume.ListResponse, error)
	Close() error
}

// Adapter implements ports.ContainerService using Docker SDK
type Adapter struct {
	cli         engineAPI
	stopTimeout int
	log         *logging.Logger
}

// Options configures the Docker adapter.
type Options struct {
	Host        string // empty uses DOCKER_HOST or the default socket
	StopTimeout int    // seconds
}

// NewAdapter creates a new Docker adapter instance
func NewAdapter(opts Options, log *logging.Logger) (*Adapter, error) {
	clientOpts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if opts.Host != "" {
		clientOpts = append(clientOpts, client.WithHost(opts.Host))
	}
	cli, err := client.NewClientWithOpts(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create docker client: %w", err)
	}
	return newAdapter(cli, opts.StopTimeout, log), nil
}

func newAdapter(cli engineAPI, stopTimeout int, log *logging.Logger) *Adapter {
	return &Adapter{cli: cli, stopTimeout: stopTimeout, log: log}
}

// Ping checks that the daemon is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	if _, err := a.cli.Ping(ctx); err != nil {
		return fmt.Errorf("failed to reach docker daemon: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (a *Adapter) Close() error {
	return a.cli.Close()
}

// ListContainers returns containers in the daemon's order; stopped ones only
// when all is set.
func (a *Adapter) ListContainers(ctx context.Context, all bool) ([]domain.Container, error) {
	containers, err := a.cli.ContainerList(ctx, container.ListOptions{All: all})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers: %w", err)
	}

	result := make([]domain.Container, 0, len(containers))
	for _, c := range containers {
		result = append(result, toContainer(c))
	}
	return result, nil
}

// InspectContainer returns the detailed state of a single container.
func (a *Adapter) InspectContainer(ctx context.Context, name string) (domain.ContainerDetail, error) {
	info, err := a.inspect(ctx, name)
	if err != nil {
		return domain.ContainerDetail{}, err
	}
	return toDetail(info), nil
}

// StartContainer starts an existing container by name or ID.
func (a *Adapter) StartContainer(ctx context.Context, name string) error {
	if err := a.cli.ContainerStart(ctx, name, container.StartOptions{}); err != nil {
		return a.lifecycleErr("start", name, err)
	}
	a.log.Info().Str("container", name).Msg("container started")
	return nil
}

// StopContainer stops a running container
func (a *Adapter) StopContainer(ctx context.Context, name string) error {
	if err := a.cli.ContainerStop(ctx, name, a.stopOptions()); err != nil {
		return a.lifecycleErr("stop", name, err)
	}
	a.log.Info().Str("container", name).Msg("container stopped")
	return nil
}

// RestartContainer restarts a container
func (a *Adapter) RestartContainer(ctx context.Context, name string) error {
	if err := a.cli.ContainerRestart(ctx, name, a.stopOptions()); err != nil {
		return a.lifecycleErr("restart", name, err)
	}
	a.log.Info().Str("container", name).Msg("container restarted")
	return nil
}

// GetContainerLogs returns the last tail lines of combined stdout and stderr.
func (a *Adapter) GetContainerLogs(ctx context.Context, name string, tail int) (string, error) {
	// TTY containers stream raw output; everything else is multiplexed.
	info, err := a.inspect(ctx, name)
	if err != nil {
		return "", err
	}

	options := container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     false,
		Tail:       strconv.Itoa(tail),
	}
	rc, err := a.cli.ContainerLogs(ctx, name, options)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for container %s: %w", name, err)
	}
	defer rc.Close()

	var buf bytes.Buffer
	if info.Config != nil && info.Config.Tty {
		_, err = io.Copy(&buf, rc)
	} else {
		_, err = stdcopy.StdCopy(&buf, &buf, rc)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read logs for container %s: %w", name, err)
	}
	return buf.String(), nil
}

// ListNetworks returns the daemon's networks.
func (a *Adapter) ListNetworks(ctx context.Context) ([]domain.Network, error) {
	networks, err := a.cli.NetworkList(ctx, types.NetworkListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list networks: %w", err)
	}

	result := make([]domain.Network, 0, len(networks))
	for _, n := range networks {
		net := domain.Network{
			ID:       shortID(n.ID),
			Name:     n.Name,
			Driver:   n.Driver,
			Scope:    n.Scope,
			Internal: n.Internal,
		}
		if !n.Created.IsZero() {
			net.Created = n.Created.UTC().Format(time.RFC3339)
		}
		result = append(result, net)
	}
	return result, nil
}

// ListVolumes returns the daemon's volumes.
func (a *Adapter) ListVolumes(ctx context.Context) ([]domain.Volume, error) {
	resp, err := a.cli.VolumeList(ctx, volume.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list volumes: %w", err)
	}
	for _, w := range resp.Warnings {
		a.log.Warn().Str("warning", w).Msg("volume list warning")
	}

	result := make([]domain.Volume, 0, len(resp.Volumes))
	for _, v := range resp.Volumes {
		if v == nil {
			continue
		}
		result = append(result, domain.Volume{
			Name:       v.Name,
			Driver:     v.Driver,
			Mountpoint: v.Mountpoint,
			Scope:      v.Scope,
			CreatedAt:  v.CreatedAt,
		})
	}
	return result, nil
}

func (a *Adapter) inspect(ctx context.Context, name string) (types.ContainerJSON, error) {
	info, err := a.cli.ContainerInspect(ctx, name)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return types.ContainerJSON{}, &domain.NotFoundError{Name: name}
		}
		return types.ContainerJSON{}, fmt.Errorf("failed to inspect container %s: %w", name, err)
	}
	if info.ContainerJSONBase == nil {
		return types.ContainerJSON{}, fmt.Errorf("failed to inspect container %s: empty response", name)
	}
	return info, nil
}

func (a *Adapter) stopOptions() container.StopOptions {
	timeout := a.stopTimeout
	return container.StopOptions{Timeout: &timeout}
}

func (a *Adapter) lifecycleErr(action, name string, err error) error {
	if errdefs.IsNotFound(err) {
		return &domain.NotFoundError{Name: name}
	}
	a.log.Warn().Str("container", name).Str("action", action).Err(err).Msg("container transition failed")
	return fmt.Errorf("failed to %s container %s: %w", action, name, err)
}

func toContainer(c types.Container) domain.Container {
	// Use the first name if available, remove slash
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	ports := make([]domain.Port, 0, len(c.Ports))
	for _, p := range c.Ports {
		ports = append(ports, domain.Port{
			IP:          p.IP,
			PrivatePort: p.PrivatePort,
			PublicPort:  p.PublicPort,
			Type:        p.Type,
		})
	}

	return domain.Container{
		ID:         shortID(c.ID),
		Name:       name,
		Status:     c.State,
		StatusText: c.Status,
		Image:      c.Image,
		Ports:      ports,
		Created:    time.Unix(c.Created, 0).UTC(),
	}
}

func toDetail(info types.ContainerJSON) domain.ContainerDetail {
	detail := domain.ContainerDetail{
		Container: domain.Container{
			ID:    shortID(info.ID),
			Name:  strings.TrimPrefix(info.Name, "/"),
			Ports: []domain.Port{},
		},
		RestartCount: info.RestartCount,
	}
	if created, err := time.Parse(time.RFC3339Nano, info.Created); err == nil {
		detail.Created = created.UTC()
	}
	if info.Config != nil {
		detail.Image = info.Config.Image
	}
	if info.NetworkSettings != nil {
		detail.Ports = toPorts(info.NetworkSettings.Ports)
	}
	if s := info.State; s != nil {
		detail.Status = s.Status
		detail.Running = s.Running
		detail.Paused = s.Paused
		detail.Restarting = s.Restarting
		detail.ExitCode = s.ExitCode
		detail.StartedAt = engineTime(s.StartedAt)
		detail.FinishedAt = engineTime(s.FinishedAt)
		if s.Health != nil {
			detail.Health = s.Health.Status
		}
	}
	return detail
}

// toPorts flattens a port map into one entry per binding, ordered by port.
func toPorts(pm nat.PortMap) []domain.Port {
	keys := make([]nat.Port, 0, len(pm))
	for p := range pm {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Int() != keys[j].Int() {
			return keys[i].Int() < keys[j].Int()
		}
		return keys[i].Proto() < keys[j].Proto()
	})

	ports := make([]domain.Port, 0, len(keys))
	for _, p := range keys {
		private := uint16(p.Int())
		bindings := pm[p]
		if len(bindings) == 0 {
			ports = append(ports, domain.Port{PrivatePort: private, Type: p.Proto()})
			continue
		}
		for _, b := range bindings {
			public, _ := strconv.ParseUint(b.HostPort, 10, 16)
			ports = append(ports, domain.Port{
				IP:          b.HostIP,
				PrivatePort: private,
				PublicPort:  uint16(public),
				Type:        p.Proto(),
			})
		}
	}
	return ports
}

// engineTime drops the zero timestamps the daemon reports for unset times.
func engineTime(s string) string {
	if s == "" || strings.HasPrefix(s, "0001-01-01") {
		return ""
	}
	return s
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
