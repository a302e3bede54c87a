package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime"
	"time"

	"github.com/melih/lighthouse-mcp/internal/core/domain"
)

// toolHandler runs one tool. Arguments arrive raw and are validated against
// the tool's schema by the typed wrapper before the engine is touched.
type toolHandler func(ctx context.Context, d *Dispatcher, tool Tool, raw json.RawMessage) (any, error)

var toolHandlers = map[string]toolHandler{
	ToolListContainers: typed(func(ctx context.Context, d *Dispatcher, args listContainersArgs) (any, error) {
		return d.listContainers(ctx, args.All)
	}),
	ToolContainerStatus: typed(func(ctx context.Context, d *Dispatcher, args containerArgs) (any, error) {
		return d.engine.InspectContainer(ctx, args.ContainerName)
	}),
	ToolStartContainer: typed(func(ctx context.Context, d *Dispatcher, args containerArgs) (any, error) {
		return lifecycle(ctx, args.ContainerName, "start", "started", d.engine.StartContainer)
	}),
	ToolStopContainer: typed(func(ctx context.Context, d *Dispatcher, args containerArgs) (any, error) {
		return lifecycle(ctx, args.ContainerName, "stop", "stopped", d.engine.StopContainer)
	}),
	ToolRestartContainer: typed(func(ctx context.Context, d *Dispatcher, args containerArgs) (any, error) {
		return lifecycle(ctx, args.ContainerName, "restart", "restarted", d.engine.RestartContainer)
	}),
	ToolGetLogs: typed(func(ctx context.Context, d *Dispatcher, args getLogsArgs) (any, error) {
		tail, err := args.lines()
		if err != nil {
			return nil, err
		}
		logs, err := d.engine.GetContainerLogs(ctx, args.ContainerName, tail)
		if err != nil {
			return nil, err
		}
		return domain.Logs{Container: args.ContainerName, Tail: tail, Logs: logs}, nil
	}),
	ToolGetSystemInfo: typed(func(ctx context.Context, d *Dispatcher, _ noArgs) (any, error) {
		return d.systemInfo(ctx)
	}),
}

func typed[T any](fn func(ctx context.Context, d *Dispatcher, args T) (any, error)) toolHandler {
	return func(ctx context.Context, d *Dispatcher, tool Tool, raw json.RawMessage) (any, error) {
		args, err := decodeArgs[T](tool, raw)
		if err != nil {
			return nil, err
		}
		return fn(ctx, d, args)
	}
}

// lifecycle runs a state transition. Whether repeating it is an error is up
// to the engine.
func lifecycle(ctx context.Context, name, action, past string, op func(context.Context, string) error) (domain.LifecycleResult, error) {
	if err := op(ctx, name); err != nil {
		return domain.LifecycleResult{}, err
	}
	return domain.LifecycleResult{
		Container: name,
		Action:    action,
		Message:   fmt.Sprintf("Container %s %s successfully", name, past),
	}, nil
}

func (d *Dispatcher) listContainers(ctx context.Context, all bool) ([]domain.Container, error) {
	containers, err := d.engine.ListContainers(ctx, all)
	if err != nil {
		return nil, err
	}
	return nonNil(containers), nil
}

func (d *Dispatcher) listNetworks(ctx context.Context) ([]domain.Network, error) {
	networks, err := d.engine.ListNetworks(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(networks), nil
}

func (d *Dispatcher) listVolumes(ctx context.Context) ([]domain.Volume, error) {
	volumes, err := d.engine.ListVolumes(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(volumes), nil
}

func (d *Dispatcher) systemInfo(ctx context.Context) (domain.SystemInfo, error) {
	containers, err := d.engine.ListContainers(ctx, true)
	if err != nil {
		return domain.SystemInfo{}, err
	}
	running := 0
	for _, c := range containers {
		if c.IsRunning() {
			running++
		}
	}
	return domain.SystemInfo{
		Uptime:          time.Since(d.started).Seconds(),
		Memory:          MemorySnapshot(),
		Platform:        runtime.GOOS,
		GoVersion:       runtime.Version(),
		ContainersCount: len(containers),
		RunningCount:    running,
	}, nil
}

// MemorySnapshot reads the current process memory statistics.
func MemorySnapshot() domain.MemoryStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return domain.MemoryStats{
		Alloc:      m.Alloc,
		TotalAlloc: m.TotalAlloc,
		Sys:        m.Sys,
		HeapInuse:  m.HeapInuse,
		NumGC:      m.NumGC,
	}
}

// nonNil keeps empty listings encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
