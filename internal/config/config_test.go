package config

import (
	"strings"
	"testing"
	"time"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var toolNames = []string{"hello", "run_n8n", "notion"}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "Universal MCP Server", cfg.Service.Name)
	assert.Equal(t, "1.0.0", cfg.Service.Version)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Contains(t, cfg.N8n.WebhookURL, "{workflow}")
	assert.Equal(t, "https://api.notion.com/v1", cfg.Notion.BaseURL)
	assert.Empty(t, cfg.Notion.APIKey)
	assert.Empty(t, cfg.Credentials)

	assert.NoError(t, cfg.Validate(toolNames))
}

func TestSeconds(t *testing.T) {
	assert.Equal(t, 30*time.Second, Seconds(30))
	assert.Equal(t, time.Duration(0), Seconds(0))
}

func TestStringMasksSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Notion.APIKey = "secret_abc"
	cfg.Credentials = []auth.Credential{{Key: "k1", Name: "alice", Permissions: []string{"hello"}}}

	out := cfg.String()

	assert.NotContains(t, out, "secret_abc")
	assert.NotContains(t, out, `"k1"`)
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "[REDACTED]")

	// The original is untouched
	assert.Equal(t, "k1", cfg.Credentials[0].Key)
	assert.Equal(t, "secret_abc", cfg.Notion.APIKey)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server.Port = 0
	cfg.Logging.Level = "verbose"
	cfg.N8n.WebhookURL = "https://n8n.example.com/webhook"

	err := cfg.Validate(toolNames)
	require.Error(t, err)

	msg := err.Error()
	assert.True(t, strings.HasPrefix(msg, "invalid configuration: "))
	assert.Contains(t, msg, "server port")
	assert.Contains(t, msg, "invalid log level")
	assert.Contains(t, msg, "{workflow}")
}
