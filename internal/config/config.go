package config

import (
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

type Config struct {
	Client     ClientConfig      `koanf:"client"`
	Pipeline   PipelineConfig    `koanf:"pipeline"`
	Storage    StorageConfig     `koanf:"storage"`
	Telemetry  TelemetryConfig   `koanf:"telemetry"`
	Operations []OperationConfig `koanf:"operations"`
}

type ClientConfig struct {
	BaseURL         string  `koanf:"base_url"`
	Timeout         string  `koanf:"timeout"`    // Duration string like "30s"
	RateLimit       float64 `koanf:"rate_limit"` // Requests per second, 0 = unlimited
	Burst           int     `koanf:"burst"`
	BlockPrivateIPs bool    `koanf:"block_private_ips"`
}

// PipelineConfig configures the response filters that run before decode.
type PipelineConfig struct {
	Stages []PipelineStageConfig `koanf:"stages"`
}

// PipelineStageConfig configures a single webhook response filter.
type PipelineStageConfig struct {
	Name    string            `koanf:"name"`
	Order   int               `koanf:"order"`
	URL     string            `koanf:"url"`
	Timeout string            `koanf:"timeout"`  // Duration string like "5s"
	OnError string            `koanf:"on_error"` // "allow" or "deny" (default: deny)
	Retries int               `koanf:"retries"`
	Headers map[string]string `koanf:"headers"`
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // sqlite, memory, none
	SQLite SQLiteConfig `koanf:"sqlite"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

type TelemetryConfig struct {
	Enabled     bool   `koanf:"enabled"`
	ServiceName string `koanf:"service_name"`
}

// OperationConfig declares one remote REST operation.
type OperationConfig struct {
	Name      string           `koanf:"name"`
	Method    string           `koanf:"method"`
	Path      string           `koanf:"path"`
	Produces  []string         `koanf:"produces"` // Empty means every registered media type
	Responses []ResponseConfig `koanf:"responses"`
}

// ResponseConfig declares the expected body type and headers for a status.
// Status 0 declares the default response.
type ResponseConfig struct {
	Status  int               `koanf:"status"`
	Type    string            `koanf:"type"`    // string, bytes, int, float, bool, object, array, any
	Headers map[string]string `koanf:"headers"` // header name -> type name
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (or DefaultPath) and then RESTC_ environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !os.IsNotExist(err) {
			return nil, err
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider("RESTC_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, "RESTC_")), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	if !k.Exists("client.timeout") {
		k.Set("client.timeout", "30s")
	}
	if !k.Exists("storage.type") {
		k.Set("storage.type", "memory")
	}
	if !k.Exists("telemetry.service_name") {
		k.Set("telemetry.service_name", "polyglot-rest-client")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	cfg.Client.BaseURL = substituteEnvVars(cfg.Client.BaseURL)
	for i := range cfg.Pipeline.Stages {
		for name, value := range cfg.Pipeline.Stages[i].Headers {
			cfg.Pipeline.Stages[i].Headers[name] = substituteEnvVars(value)
		}
	}

	return &cfg, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
