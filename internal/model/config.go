package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// APIConfig holds the REST backend connection settings.
type APIConfig struct {
	// BaseURL is the root URL of the backend (e.g., https://tasks.example.com).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// Version is the path segment inserted after /api/.
	Version string `mapstructure:"version" yaml:"version"`

	// TimeoutSec bounds a single request.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`

	// MaxConcurrency bounds the number of in-flight topic fetches while
	// assembling the project tree.
	MaxConcurrency int `mapstructure:"max_concurrency" yaml:"max_concurrency"`
}

// WebConfig describes the browser front-end whose routes the TUI mirrors.
type WebConfig struct {
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
}

// AuthConfig holds token verification settings.
type AuthConfig struct {
	// JWKSURL enables signature verification of access tokens when set.
	JWKSURL string `mapstructure:"jwks_url" yaml:"jwks_url"`
}

// StorageConfig locates client-side persisted state.
type StorageConfig struct {
	DBPath         string `mapstructure:"db_path" yaml:"db_path"`
	KeyringBackend string `mapstructure:"keyring_backend" yaml:"keyring_backend"`
}

// LogConfig controls the log file.
type LogConfig struct {
	File  string `mapstructure:"file" yaml:"file"`
	Level string `mapstructure:"level" yaml:"level"`
}

// DisplayConfig holds UI/rendering preferences.
type DisplayConfig struct {
	Theme           string `mapstructure:"theme" yaml:"theme"`
	PollIntervalSec int    `mapstructure:"poll_interval_sec" yaml:"poll_interval_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	API     APIConfig     `mapstructure:"api" yaml:"api"`
	Web     WebConfig     `mapstructure:"web" yaml:"web"`
	Auth    AuthConfig    `mapstructure:"auth" yaml:"auth"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`
}

// configDir returns ~/.config/taskboard, or the working directory when the
// home directory cannot be resolved.
func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "taskboard")
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/taskboard/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(configDir(), "config.yaml")
}

// defaultAppConfig returns a sensible default configuration.
func defaultAppConfig() *AppConfig {
	dir := configDir()
	return &AppConfig{
		API: APIConfig{
			BaseURL:        "http://localhost:3000",
			Version:        "v1",
			TimeoutSec:     30,
			MaxConcurrency: 8,
		},
		Web: WebConfig{
			BaseURL: "http://localhost:5173",
		},
		Storage: StorageConfig{
			DBPath:         filepath.Join(dir, "taskboard.db"),
			KeyringBackend: "",
		},
		Log: LogConfig{
			File:  filepath.Join(dir, "taskboard.log"),
			Level: "info",
		},
		Display: DisplayConfig{
			Theme:           "default",
			PollIntervalSec: 60,
		},
	}
}

// setDefaults registers every key so that environment overrides are picked
// up by Unmarshal.
func setDefaults(v *viper.Viper, cfg *AppConfig) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.version", cfg.API.Version)
	v.SetDefault("api.timeout_sec", cfg.API.TimeoutSec)
	v.SetDefault("api.max_concurrency", cfg.API.MaxConcurrency)
	v.SetDefault("web.base_url", cfg.Web.BaseURL)
	v.SetDefault("auth.jwks_url", cfg.Auth.JWKSURL)
	v.SetDefault("storage.db_path", cfg.Storage.DBPath)
	v.SetDefault("storage.keyring_backend", cfg.Storage.KeyringBackend)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("display.theme", cfg.Display.Theme)
	v.SetDefault("display.poll_interval_sec", cfg.Display.PollIntervalSec)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// TASKBOARD_* environment variables override file values (for example
// TASKBOARD_API_BASE_URL). If the file does not exist, defaults are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, defaultAppConfig())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); !ok {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.API.Version == "" {
		cfg.API.Version = "v1"
	}
	if cfg.API.TimeoutSec <= 0 {
		cfg.API.TimeoutSec = 30
	}
	if cfg.API.MaxConcurrency <= 0 {
		cfg.API.MaxConcurrency = 8
	}
	if cfg.Display.PollIntervalSec <= 0 {
		cfg.Display.PollIntervalSec = 60
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("api", cfg.API)
	v.Set("web", cfg.Web)
	v.Set("auth", cfg.Auth)
	v.Set("storage", cfg.Storage)
	v.Set("log", cfg.Log)
	v.Set("display", cfg.Display)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
