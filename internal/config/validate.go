package config

import (
	"fmt"
	"net/url"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "server.port",
			Message: fmt.Sprintf("port must be 1-65535, got %d", cfg.Server.Port),
		})
	}

	if cfg.Server.BodyLimit < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "server.bodyLimit",
			Message: "must not be negative",
		})
	}

	for _, origin := range cfg.Server.Origins() {
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, ValidationIssue{
				Path:    "server.allowedOrigins",
				Message: fmt.Sprintf("invalid origin %q", origin),
			})
		}
	}

	if cfg.Auth.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "auth.apiKey",
			Message: "must be set (or provide MCP_API_KEY)",
		})
	}

	validModes := []string{ModeLive, ModeMock}
	if !slices.Contains(validModes, cfg.Engine.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "engine.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validModes, cfg.Engine.Mode),
		})
	}

	if cfg.Engine.StopTimeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "engine.stopTimeout",
			Message: "must not be negative",
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	validStyles := []string{"pretty", "json"}
	if !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	return issues
}
