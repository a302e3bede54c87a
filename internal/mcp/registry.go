package mcp

import "slices"

// Tool describes an operation callable through tools/call.
type Tool struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	InputSchema InputSchema `json:"inputSchema"`
}

// InputSchema is the JSON-Schema subset used to describe tool arguments.
type InputSchema struct {
	Type       string              `json:"type"`
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

// Property describes a single argument.
type Property struct {
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Resource describes a URI-addressed, read-only listing.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// Tool names.
const (
	ToolListContainers   = "list_containers"
	ToolContainerStatus  = "container_status"
	ToolStartContainer   = "start_container"
	ToolStopContainer    = "stop_container"
	ToolRestartContainer = "restart_container"
	ToolGetLogs          = "get_logs"
	ToolGetSystemInfo    = "get_system_info"
)

// Resource URIs.
const (
	ResourceContainers = "docker://containers"
	ResourceNetworks   = "docker://networks"
	ResourceVolumes    = "docker://volumes"
	ResourceSystemInfo = "system://info"
)

const mimeJSON = "application/json"

func stringProp(desc string) Property {
	return Property{Type: "string", Description: desc}
}

func boolProp(desc string) Property {
	return Property{Type: "boolean", Description: desc}
}

func numberProp(desc string) Property {
	return Property{Type: "number", Description: desc}
}

func containerNameSchema() InputSchema {
	return InputSchema{
		Type: "object",
		Properties: map[string]Property{
			"container_name": stringProp("Name of the container"),
		},
		Required: []string{"container_name"},
	}
}

var tools = []Tool{
	{
		Name:        ToolListContainers,
		Description: "List Docker containers",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"all": boolProp("Include stopped containers"),
			},
		},
	},
	{
		Name:        ToolContainerStatus,
		Description: "Get status of a specific container",
		InputSchema: containerNameSchema(),
	},
	{
		Name:        ToolStartContainer,
		Description: "Start a container",
		InputSchema: containerNameSchema(),
	},
	{
		Name:        ToolStopContainer,
		Description: "Stop a running container",
		InputSchema: containerNameSchema(),
	},
	{
		Name:        ToolRestartContainer,
		Description: "Restart a container",
		InputSchema: containerNameSchema(),
	},
	{
		Name:        ToolGetLogs,
		Description: "Get the most recent log lines of a container (stdout and stderr)",
		InputSchema: InputSchema{
			Type: "object",
			Properties: map[string]Property{
				"container_name": stringProp("Name of the container"),
				"tail":           numberProp("Number of lines to return (default 100)"),
			},
			Required: []string{"container_name"},
		},
	},
	{
		Name:        ToolGetSystemInfo,
		Description: "Get gateway process and container count information",
		InputSchema: InputSchema{
			Type:       "object",
			Properties: map[string]Property{},
		},
	},
}

var toolsByName = func() map[string]Tool {
	m := make(map[string]Tool, len(tools))
	for _, t := range tools {
		m[t.Name] = t
	}
	return m
}()

// Tools returns the tool registry in declaration order.
func Tools() []Tool {
	return slices.Clone(tools)
}

// LookupTool finds a tool by name.
func LookupTool(name string) (Tool, bool) {
	t, ok := toolsByName[name]
	return t, ok
}

// LiveResources is the catalog served when backed by a real engine.
func LiveResources() []Resource {
	return []Resource{
		{
			URI:         ResourceContainers,
			Name:        "Docker Containers",
			Description: "List of all Docker containers",
			MimeType:    mimeJSON,
		},
		{
			URI:         ResourceNetworks,
			Name:        "Docker Networks",
			Description: "List of Docker networks",
			MimeType:    mimeJSON,
		},
		{
			URI:         ResourceVolumes,
			Name:        "Docker Volumes",
			Description: "List of Docker volumes",
			MimeType:    mimeJSON,
		},
		{
			URI:         ResourceSystemInfo,
			Name:        "System Information",
			Description: "System information and statistics",
			MimeType:    mimeJSON,
		},
	}
}

// MockResources is the reduced catalog served by the fixture engine.
func MockResources() []Resource {
	return []Resource{
		{
			URI:         ResourceContainers,
			Name:        "Docker Containers (Mock)",
			Description: "List of all Docker containers (mock data)",
			MimeType:    mimeJSON,
		},
		{
			URI:         ResourceSystemInfo,
			Name:        "System Information",
			Description: "System information and statistics",
			MimeType:    mimeJSON,
		},
	}
}
