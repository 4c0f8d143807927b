package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TOOLGATE_SERVER_PORT
const EnvPrefix = "TOOLGATE"

// envKeys are the settings that can be overridden from the environment
// without a config file
var envKeys = []string{
	"server.host",
	"server.port",
	"logging.level",
	"logging.file",
	"logging.pretty",
	"metrics.enabled",
	"tracing.enabled",
	"tracing.exporter",
	"tracing.endpoint",
	"n8n.webhook_url",
	"n8n.timeout",
	"notion.base_url",
	"notion.timeout",
	"credentials_file",
}

// Loader handles configuration loading
type Loader struct {
	configPath string
}

// NewLoader creates a new config loader
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
	}
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".toolgate", "toolgate.yaml")
}

// Load reads the config file if present, applies environment overrides and
// appends credentials from credentials_file
func (l *Loader) Load() (*Config, error) {
	v := l.newViper()

	configPath := l.GetConfigPath()
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
	}

	// Unmarshal over the defaults so absent keys keep their default value
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.CredentialsFile != "" {
		creds, err := auth.LoadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
		cfg.Credentials = append(cfg.Credentials, creds...)
	}

	return cfg, nil
}

func (l *Loader) newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
	// The Notion key is also accepted under its conventional name
	_ = v.BindEnv("notion.api_key", EnvPrefix+"_NOTION_API_KEY", "NOTION_API_KEY")

	return v
}

// Save writes cfg to the config path, creating directories as needed
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()
	if configPath == "" {
		return fmt.Errorf("failed to determine config path")
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Round-trip through JSON so keys follow the json/mapstructure tags
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	var values map[string]interface{}
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	v := viper.New()
	for key, value := range values {
		v.Set(key, value)
	}

	if err := v.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	return NewLoader(configPath).Load()
}
