package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/harun/toolgate/pkg/auth"
)

// Config represents the gateway configuration
type Config struct {
	// Service identity reported by / and /health
	Service ServiceConfig `json:"service" mapstructure:"service"`

	// HTTP server
	Server ServerConfig `json:"server" mapstructure:"server"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Prometheus metrics
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// OpenTelemetry tracing
	Tracing TracingConfig `json:"tracing" mapstructure:"tracing"`

	// Downstream services
	N8n    N8nConfig    `json:"n8n" mapstructure:"n8n"`
	Notion NotionConfig `json:"notion" mapstructure:"notion"`

	// API keys accepted by tools that require authentication
	Credentials     []auth.Credential `json:"credentials" mapstructure:"credentials"`
	CredentialsFile string            `json:"credentials_file" mapstructure:"credentials_file"`
}

// ServiceConfig describes the service
type ServiceConfig struct {
	Name        string `json:"name" mapstructure:"name"`
	Version     string `json:"version" mapstructure:"version"`
	Description string `json:"description" mapstructure:"description"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string `json:"host" mapstructure:"host"`
	Port            int    `json:"port" mapstructure:"port"`
	ShutdownTimeout int    `json:"shutdown_timeout" mapstructure:"shutdown_timeout"` // seconds
	MaxBodyBytes    int64  `json:"max_body_bytes" mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

// TracingConfig holds tracing configuration
type TracingConfig struct {
	Enabled     bool    `json:"enabled" mapstructure:"enabled"`
	ServiceName string  `json:"service_name" mapstructure:"service_name"`
	SampleRatio float64 `json:"sample_ratio" mapstructure:"sample_ratio"`
	Exporter    string  `json:"exporter" mapstructure:"exporter"` // none, stdout or otlp
	Endpoint    string  `json:"endpoint" mapstructure:"endpoint"` // OTLP/HTTP collector host:port
	Insecure    bool    `json:"insecure" mapstructure:"insecure"`
}

// N8nConfig holds the workflow webhook configuration
type N8nConfig struct {
	WebhookURL string `json:"webhook_url" mapstructure:"webhook_url"` // must contain {workflow}
	Timeout    int    `json:"timeout" mapstructure:"timeout"`         // seconds
}

// NotionConfig holds the Notion API configuration
type NotionConfig struct {
	BaseURL string `json:"base_url" mapstructure:"base_url"`
	APIKey  string `json:"api_key" mapstructure:"api_key"`
	Version string `json:"version" mapstructure:"version"`
	Timeout int    `json:"timeout" mapstructure:"timeout"` // seconds
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:        "Universal MCP Server",
			Version:     "1.0.0",
			Description: "A universal tool/function handler for LLMs",
		},
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 30,
			MaxBodyBytes:    1 << 20,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    false,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "toolgate",
			SampleRatio: 1,
			Exporter:    "otlp",
			Endpoint:    "localhost:4318",
			Insecure:    true,
		},
		N8n: N8nConfig{
			WebhookURL: "https://my-n8n-server/webhook/{workflow}",
			Timeout:    30,
		},
		Notion: NotionConfig{
			BaseURL: "https://api.notion.com/v1",
			Version: "2022-06-28",
			Timeout: 30,
		},
		Credentials: []auth.Credential{},
	}
}

// Seconds converts a seconds field to a duration
func Seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// String returns a JSON representation of the config with secrets masked
func (c *Config) String() string {
	masked := *c
	if masked.Notion.APIKey != "" {
		masked.Notion.APIKey = "[REDACTED]"
	}
	masked.Credentials = make([]auth.Credential, len(c.Credentials))
	for i, cred := range c.Credentials {
		cred.Key = "[REDACTED]"
		masked.Credentials[i] = cred
	}

	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks the configuration against the names of the registered
// tools. All problems are reported together.
func (c *Config) Validate(toolNames []string) error {
	errs := NewValidator(toolNames).ValidateConfig(c)
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}
