package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"tunnel-dashboard/internal/env"

	"github.com/spf13/viper"
)

/**
 * Server configuration parameters
 * @property {string} address - Dashboard listening address (e.g. ":8080")
 * @property {string} socket - Optional unix socket path the dashboard also listens on
 * @property {string} mode - gin mode (debug/release/test)
 */
type ServerConfig struct {
	Address string `mapstructure:"address"`
	Socket  string `mapstructure:"socket"`
	Mode    string `mapstructure:"mode"`
}

/**
 * Tunnel orchestrator backend
 * @property {string} base_url - Base URL of the backend (e.g. "http://127.0.0.1:8000")
 * @property {string} network - tcp or unix
 * @property {string} address - unix socket path when network is unix
 * @property {duration} timeout - Per-request timeout
 */
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Network string        `mapstructure:"network"`
	Address string        `mapstructure:"address"`
	Timeout time.Duration `mapstructure:"timeout"`
}

/**
 * Polling cadence
 * @property {duration} health_interval - Health probe period
 * @property {duration} status_interval - Full snapshot period
 * @property {duration} probe_delay - Delay of the follow-up probe after a command
 */
type PollingConfig struct {
	HealthInterval time.Duration `mapstructure:"health_interval"`
	StatusInterval time.Duration `mapstructure:"status_interval"`
	ProbeDelay     time.Duration `mapstructure:"probe_delay"`
}

type NotificationConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

/**
 * Logging configuration
 * @property {string} level - Log level (debug/info/warn/error)
 * @property {string} path - Log file path, "console" for stdout
 * @property {string} format - console or json
 */
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Path   string `mapstructure:"path"`
	Format string `mapstructure:"format"`
}

/**
 * Metrics configuration
 * @property {string} pushgateway - Pushgateway address, empty disables pushing
 * @property {duration} push_interval - Push period
 */
type MetricsConfig struct {
	Pushgateway  string        `mapstructure:"pushgateway"`
	PushInterval time.Duration `mapstructure:"push_interval"`
}

var ErrInvalidConfig = errors.New("invalid config")

type AppConfig struct {
	Server        ServerConfig       `mapstructure:"server"`
	Backend       BackendConfig      `mapstructure:"backend"`
	Polling       PollingConfig      `mapstructure:"polling"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Log           LogConfig          `mapstructure:"log"`
	Metrics       MetricsConfig      `mapstructure:"metrics"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.socket", "")
	v.SetDefault("server.mode", "release")
	v.SetDefault("backend.base_url", "http://127.0.0.1:8000")
	v.SetDefault("backend.network", "tcp")
	v.SetDefault("backend.address", "")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("polling.health_interval", 10*time.Second)
	v.SetDefault("polling.status_interval", 120*time.Second)
	v.SetDefault("polling.probe_delay", time.Second)
	v.SetDefault("notifications.ttl", 3*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "console")
	v.SetDefault("log.format", "console")
	v.SetDefault("metrics.pushgateway", "")
	v.SetDefault("metrics.push_interval", 30*time.Second)
}

/**
 * Load application configuration
 * @param {string} path - Explicit config file, empty to search "." and the dashboard dir
 * @returns {*AppConfig} Loaded configuration with defaults applied
 * @returns {error} Error if the file exists but cannot be parsed or values are invalid
 * @description
 * - Missing config file is not an error, defaults and TUNNELDASH_* env vars apply
 */
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TUNNELDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(env.DashboardDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects values the pollers cannot run with.
func (c *AppConfig) Validate() error {
	if c.Polling.HealthInterval <= 0 {
		return fmt.Errorf("%w: polling.health_interval must be positive", ErrInvalidConfig)
	}
	if c.Polling.StatusInterval <= 0 {
		return fmt.Errorf("%w: polling.status_interval must be positive", ErrInvalidConfig)
	}
	if c.Polling.ProbeDelay < 0 {
		return fmt.Errorf("%w: polling.probe_delay must not be negative", ErrInvalidConfig)
	}
	if c.Notifications.TTL <= 0 {
		return fmt.Errorf("%w: notifications.ttl must be positive", ErrInvalidConfig)
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("%w: server.mode must be debug, release or test, got %q", ErrInvalidConfig, c.Server.Mode)
	}
	switch c.Backend.Network {
	case "tcp":
	case "unix":
		if c.Backend.Address == "" {
			c.Backend.Address = filepath.Join(env.DashboardDir, "run", "orchestrator.sock")
		}
	default:
		return fmt.Errorf("%w: backend.network must be tcp or unix, got %q", ErrInvalidConfig, c.Backend.Network)
	}
	return nil
}

var (
	Config     AppConfig
	configPath string
	configLock sync.RWMutex
)

/**
 * Initialize the global configuration
 * @param {string} path - Config file path passed by --config, may be empty
 */
func Init(path string) error {
	cfg, err := LoadConfig(path)
	if err != nil {
		return err
	}
	configLock.Lock()
	defer configLock.Unlock()
	Config = *cfg
	configPath = path
	return nil
}

// App returns a copy of the global configuration.
func App() *AppConfig {
	configLock.RLock()
	defer configLock.RUnlock()
	cfg := Config
	return &cfg
}

// ReloadConfig re-reads the file given to Init.
func ReloadConfig() error {
	configLock.RLock()
	path := configPath
	configLock.RUnlock()
	return Init(path)
}

func init() {
	cfg, err := LoadConfig("")
	if err == nil {
		Config = *cfg
	}
}
