package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/harun/toolgate/pkg/server"
)

// Validator validates configuration values
type Validator struct {
	tools map[string]bool
}

// NewValidator creates a validator that knows the registered tool names
func NewValidator(toolNames []string) *Validator {
	tools := make(map[string]bool, len(toolNames))
	for _, name := range toolNames {
		tools[name] = true
	}
	return &Validator{tools: tools}
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidatePort validates a TCP port
func (v *Validator) ValidatePort(port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", port)
	}
	return nil
}

// ValidateTimeout validates a timeout in seconds
func (v *Validator) ValidateTimeout(name string, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%s timeout must be positive, got %d", name, seconds)
	}
	return nil
}

// ValidateURL validates an absolute http(s) URL
func (v *Validator) ValidateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: invalid URL: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s: URL scheme must be http or https", name)
	}
	if u.Host == "" {
		return fmt.Errorf("%s: URL host is required", name)
	}
	return nil
}

// ValidateWebhookTemplate validates the n8n webhook URL template
func (v *Validator) ValidateWebhookTemplate(template string) error {
	if !strings.Contains(template, "{workflow}") {
		return fmt.Errorf("n8n webhook_url must contain {workflow}")
	}
	return v.ValidateURL("n8n webhook_url", strings.ReplaceAll(template, "{workflow}", "x"))
}

// ValidateCredentials checks keys and that every permission names a
// registered tool or the wildcard
func (v *Validator) ValidateCredentials(creds []auth.Credential) []error {
	var errors []error
	seen := make(map[string]bool, len(creds))

	for i, cred := range creds {
		label := fmt.Sprintf("credential %d", i)
		if cred.Name != "" {
			label = fmt.Sprintf("credential %d (%s)", i, cred.Name)
		}

		if strings.TrimSpace(cred.Key) == "" {
			errors = append(errors, fmt.Errorf("%s: key is required", label))
		} else if seen[cred.Key] {
			errors = append(errors, fmt.Errorf("%s: duplicate key", label))
		}
		seen[cred.Key] = true

		for _, perm := range cred.Permissions {
			if perm != auth.Wildcard && !v.tools[perm] {
				errors = append(errors, fmt.Errorf("%s: unknown tool in permissions: %s", label, perm))
			}
		}
	}

	return errors
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := v.ValidatePort(cfg.Server.Port); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateTimeout("server shutdown", cfg.Server.ShutdownTimeout); err != nil {
		errors = append(errors, err)
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		errors = append(errors, fmt.Errorf("server max_body_bytes must be positive"))
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	if cfg.Metrics.Enabled {
		if err := server.ValidateMetricsPath(cfg.Metrics.Path); err != nil {
			errors = append(errors, err)
		}
	}

	if cfg.Tracing.Enabled {
		if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1 {
			errors = append(errors, fmt.Errorf("tracing sample_ratio must be between 0 and 1"))
		}
		switch cfg.Tracing.Exporter {
		case "none", "stdout", "otlp":
		default:
			errors = append(errors, fmt.Errorf("invalid tracing exporter: %s (must be one of: none, stdout, otlp)", cfg.Tracing.Exporter))
		}
	}

	if err := v.ValidateWebhookTemplate(cfg.N8n.WebhookURL); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateTimeout("n8n", cfg.N8n.Timeout); err != nil {
		errors = append(errors, err)
	}

	if err := v.ValidateURL("notion base_url", cfg.Notion.BaseURL); err != nil {
		errors = append(errors, err)
	}
	if err := v.ValidateTimeout("notion", cfg.Notion.Timeout); err != nil {
		errors = append(errors, err)
	}

	errors = append(errors, v.ValidateCredentials(cfg.Credentials)...)

	return errors
}
