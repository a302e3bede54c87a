package domain

// Network is a summary of an engine network.
type Network struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Driver   string `json:"driver"`
	Scope    string `json:"scope"`
	Internal bool   `json:"internal"`
	Created  string `json:"created,omitempty"`
}

// Volume is a summary of an engine volume.
type Volume struct {
	Name       string `json:"name"`
	Driver     string `json:"driver"`
	Mountpoint string `json:"mountpoint"`
	Scope      string `json:"scope"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// LifecycleResult confirms a start/stop/restart transition.
type LifecycleResult struct {
	Container string `json:"container"`
	Action    string `json:"action"`
	Message   string `json:"message"`
}

// Logs holds the tail of a container's combined stdout and stderr.
type Logs struct {
	Container string `json:"container"`
	Tail      int    `json:"tail"`
	Logs      string `json:"logs"`
}

// MemoryStats is a snapshot of the gateway process memory.
type MemoryStats struct {
	Alloc      uint64 `json:"alloc"`
	TotalAlloc uint64 `json:"total_alloc"`
	Sys        uint64 `json:"sys"`
	HeapInuse  uint64 `json:"heap_inuse"`
	NumGC      uint32 `json:"num_gc"`
}

// SystemInfo describes the gateway process and the engine it fronts.
type SystemInfo struct {
	Uptime          float64     `json:"uptime"`
	Memory          MemoryStats `json:"memory"`
	Platform        string      `json:"platform"`
	GoVersion       string      `json:"go_version"`
	ContainersCount int         `json:"containers_count"`
	RunningCount    int         `json:"running_count"`
}
