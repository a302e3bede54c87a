package config

import (
	"net"
	"strconv"
)

// Config is the root configuration for the gateway.
type Config struct {
	Server  ServerConfig  `yaml:"server,omitempty"`
	Auth    AuthConfig    `yaml:"auth,omitempty"`
	Engine  EngineConfig  `yaml:"engine,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Name           string   `yaml:"name,omitempty"`
	Host           string   `yaml:"host,omitempty"`
	Port           int      `yaml:"port,omitempty"`
	Domain         string   `yaml:"domain,omitempty"` // adds https://<domain> and https://api.<domain> to the allowed origins
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
	BodyLimit      int      `yaml:"bodyLimit,omitempty"` // bytes
}

// AuthConfig holds the shared secret expected in the x-api-key header.
type AuthConfig struct {
	APIKey string `yaml:"apiKey,omitempty"`
}

// EngineConfig selects the container engine backing the gateway.
type EngineConfig struct {
	Mode        string `yaml:"mode,omitempty"`        // "live" | "mock"
	Host        string `yaml:"host,omitempty"`        // docker endpoint, e.g. unix:///var/run/docker.sock; empty uses DOCKER_HOST
	StopTimeout int    `yaml:"stopTimeout,omitempty"` // seconds the engine waits before killing on stop/restart
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
	File  string `yaml:"file,omitempty"`
}

// Engine modes.
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// ConfigError reports a config file that could not be parsed.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string { return e.Message }

// Defaults returns the configuration used when no file or env is present.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Name: "lighthouse-mcp",
			Host: "0.0.0.0",
			Port: 3000,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://127.0.0.1:3000",
			},
			BodyLimit: 1 << 20,
		},
		Engine: EngineConfig{
			Mode:        ModeLive,
			StopTimeout: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			Style: "pretty",
		},
	}
}

// Origins returns the allowed CORS origins including the ones derived from Domain.
func (s ServerConfig) Origins() []string {
	origins := make([]string, 0, len(s.AllowedOrigins)+2)
	if s.Domain != "" {
		origins = append(origins, "https://"+s.Domain, "https://api."+s.Domain)
	}
	return append(origins, s.AllowedOrigins...)
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
