package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. A missing file or empty path produces defaults only.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
			}
		case !os.IsNotExist(err):
			return cfg, err
		}
	}

	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)
	cfg.Auth.APIKey = expandEnvVars(cfg.Auth.APIKey)
	return cfg, nil
}

// applyDefaults fills zero-value fields left empty by the config file.
func applyDefaults(cfg *Config) {
	def := Defaults()
	if cfg.Server.Name == "" {
		cfg.Server.Name = def.Server.Name
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = def.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = def.Server.Port
	}
	if cfg.Server.BodyLimit == 0 {
		cfg.Server.BodyLimit = def.Server.BodyLimit
	}
	if cfg.Engine.Mode == "" {
		cfg.Engine.Mode = def.Engine.Mode
	}
	if cfg.Engine.StopTimeout == 0 {
		cfg.Engine.StopTimeout = def.Engine.StopTimeout
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = def.Logging.Level
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = def.Logging.Style
	}
}

// applyEnvOverrides reads MCP_* environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MCP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("MCP_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("MCP_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("DOMAIN"); v != "" {
		cfg.Server.Domain = v
	}
	if v := os.Getenv("MCP_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("MCP_ENGINE_MODE"); v != "" {
		cfg.Engine.Mode = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_ENGINE_HOST"); v != "" {
		cfg.Engine.Host = v
	}
	if v := os.Getenv("MCP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("MCP_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
