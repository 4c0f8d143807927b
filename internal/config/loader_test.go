package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoaderDefaultsWithoutFile(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoaderReadsFile(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")
	dir := t.TempDir()

	path := writeFile(t, dir, "toolgate.yaml", `
server:
  port: 9000
logging:
  level: debug
n8n:
  webhook_url: https://n8n.internal/webhook/{workflow}
credentials:
  - key: k1
    name: alice
    permissions: [hello]
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host, "unset keys keep defaults")
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "https://n8n.internal/webhook/{workflow}", cfg.N8n.WebhookURL)
	assert.Equal(t, 30, cfg.N8n.Timeout)
	require.Len(t, cfg.Credentials, 1)
	assert.Equal(t, auth.Credential{Key: "k1", Name: "alice", Permissions: []string{"hello"}}, cfg.Credentials[0])
}

func TestLoaderEnvironmentOverrides(t *testing.T) {
	t.Setenv("TOOLGATE_SERVER_PORT", "9100")
	t.Setenv("TOOLGATE_LOGGING_LEVEL", "warn")
	t.Setenv("NOTION_API_KEY", "secret_from_env")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "secret_from_env", cfg.Notion.APIKey)
}

func TestLoaderPrefixedNotionKeyWins(t *testing.T) {
	t.Setenv("TOOLGATE_NOTION_API_KEY", "secret_prefixed")
	t.Setenv("NOTION_API_KEY", "secret_plain")

	cfg, err := NewLoader(filepath.Join(t.TempDir(), "absent.yaml")).Load()
	require.NoError(t, err)

	assert.Equal(t, "secret_prefixed", cfg.Notion.APIKey)
}

func TestLoaderCredentialsFile(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")
	dir := t.TempDir()

	credPath := writeFile(t, dir, "credentials.yaml", `credentials:
  - key: k2
    name: admin
    permissions: ["*"]
`)
	path := writeFile(t, dir, "toolgate.yaml", "credentials_file: "+credPath+"\n"+`credentials:
  - key: k1
    name: alice
    permissions: [hello]
`)

	cfg, err := NewLoader(path).Load()
	require.NoError(t, err)

	require.Len(t, cfg.Credentials, 2)
	assert.Equal(t, "alice", cfg.Credentials[0].Name)
	assert.Equal(t, "admin", cfg.Credentials[1].Name)
}

func TestLoaderErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("malformed file", func(t *testing.T) {
		path := writeFile(t, dir, "bad.yaml", "server: [\n")
		_, err := NewLoader(path).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read config file")
	})

	t.Run("missing credentials file", func(t *testing.T) {
		path := writeFile(t, dir, "creds.yaml", "credentials_file: "+filepath.Join(dir, "nope.yaml")+"\n")
		_, err := NewLoader(path).Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read credentials file")
	})
}

func TestLoaderSaveRoundTrip(t *testing.T) {
	t.Setenv("NOTION_API_KEY", "")
	path := filepath.Join(t.TempDir(), "nested", "toolgate.yaml")
	loader := NewLoader(path)

	cfg := DefaultConfig()
	cfg.Server.Port = 8123
	cfg.Credentials = []auth.Credential{{Key: "k1", Name: "alice", Permissions: []string{"hello"}}}

	require.NoError(t, loader.Save(cfg))

	loaded, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, 8123, loaded.Server.Port)
	assert.Equal(t, cfg.Service, loaded.Service)
	assert.Equal(t, cfg.Credentials, loaded.Credentials)
}

func TestGetConfigPath(t *testing.T) {
	assert.Equal(t, "/tmp/custom.yaml", NewLoader("/tmp/custom.yaml").GetConfigPath())

	path := NewLoader("").GetConfigPath()
	assert.Contains(t, path, filepath.Join(".toolgate", "toolgate.yaml"))
}
