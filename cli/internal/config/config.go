package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/satishbabariya/r2dbc-go/query/executor"
	"github.com/satishbabariya/r2dbc-go/runtime/client"
	"github.com/satishbabariya/r2dbc-go/runtime/database"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

var AppFs = afero.NewOsFs()

const (
	configName = ".r2dbc"
	envPrefix  = "R2DBC"
)

// Config holds the application configuration
type Config struct {
	Provider       string        `mapstructure:"provider" validate:"required,oneof=postgres postgresql pgx mysql sqlite sqlite3"`
	DatabaseURL    string        `mapstructure:"database_url" validate:"required"`
	MaxConnections int           `mapstructure:"max_connections" validate:"gte=0"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
	Retry          RetryConfig   `mapstructure:"retry"`
	Mapping        MappingConfig `mapstructure:"mapping"`
	Debug          bool          `mapstructure:"debug"`
}

// RetryConfig holds the retry settings for transient failures.
type RetryConfig struct {
	MaxAttempts     int           `mapstructure:"max_attempts" validate:"gte=1"`
	InitialInterval time.Duration `mapstructure:"initial_interval" validate:"gte=0"`
	MaxInterval     time.Duration `mapstructure:"max_interval" validate:"gtefield=InitialInterval"`
}

// MappingConfig holds row mapping settings.
type MappingConfig struct {
	CaseSensitiveKeys bool `mapstructure:"case_sensitive_keys"`
}

var validate = validator.New()

// Validate checks required fields and ranges.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// DatabaseConfig returns the adapter settings.
func (c *Config) DatabaseConfig() database.Config {
	cfg := database.DefaultConfig()
	cfg.Provider = c.Provider
	cfg.URL = c.DatabaseURL
	if c.MaxConnections > 0 {
		cfg.MaxConnections = c.MaxConnections
	}
	if c.ConnectTimeout > 0 {
		cfg.ConnectTimeout = c.ConnectTimeout
	}
	return cfg
}

// RetryPolicy returns the executor retry policy.
func (c *Config) RetryPolicy() executor.RetryConfig {
	policy := executor.DefaultRetryConfig()
	policy.MaxAttempts = c.Retry.MaxAttempts
	policy.InitialDelay = c.Retry.InitialInterval
	policy.MaxDelay = c.Retry.MaxInterval
	return policy
}

// ClientOptions returns the client options the configuration implies.
func (c *Config) ClientOptions() []client.Option {
	opts := []client.Option{client.WithRetry(c.RetryPolicy())}
	if c.Mapping.CaseSensitiveKeys {
		opts = append(opts, client.WithCaseSensitiveKeys())
	}
	return opts
}

// Loader reads configuration from a config file, the environment and
// .env files found in the working directory.
type Loader struct {
	fs afero.Fs
	v  *viper.Viper
}

// NewLoader creates a loader reading files from fs.
func NewLoader(fs afero.Fs) *Loader {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
		v.AddConfigPath(filepath.Join(home, ".config", "r2dbc"))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	v.SetDefault("provider", "")
	v.SetDefault("database_url", "")
	v.SetDefault("max_connections", 10)
	v.SetDefault("connect_timeout", 10*time.Second)
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_interval", 100*time.Millisecond)
	v.SetDefault("retry.max_interval", 5*time.Second)
	v.SetDefault("mapping.case_sensitive_keys", false)
	v.SetDefault("debug", false)

	return &Loader{fs: fs, v: v}
}

// SetConfigFile reads configuration from path instead of searching for it.
func (l *Loader) SetConfigFile(path string) {
	if path != "" {
		l.v.SetConfigFile(path)
	}
}

// ConfigFileUsed returns the file the configuration was read from.
func (l *Loader) ConfigFileUsed() string { return l.v.ConfigFileUsed() }

// Load loads configuration from various sources. It does not validate;
// call Validate once every value is known.
func (l *Loader) Load() (*Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	dotenv, err := l.readDotenv()
	if err != nil {
		return nil, err
	}
	for _, key := range l.v.AllKeys() {
		envKey := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if os.Getenv(envKey) != "" {
			continue
		}
		if value, ok := dotenv[envKey]; ok {
			l.v.Set(key, value)
		}
	}

	cfg, err := l.decode()
	if err != nil {
		return nil, err
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dotenv["DATABASE_URL"]
	}
	if cfg.Provider == "" && cfg.DatabaseURL != "" {
		cfg.Provider = DetectProvider(cfg.DatabaseURL)
	}
	return cfg, nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file changes.
func (l *Loader) Watch(onChange func(*Config, error)) {
	l.v.OnConfigChange(func(fsnotify.Event) {
		onChange(l.decode())
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (*Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

// readDotenv parses .env and then .env.local, which takes priority.
func (l *Loader) readDotenv() (map[string]string, error) {
	values := map[string]string{}
	for _, name := range []string{".env", ".env.local"} {
		data, err := afero.ReadFile(l.fs, name)
		if err != nil {
			continue
		}
		parsed, err := godotenv.Parse(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		for k, v := range parsed {
			values[k] = v
		}
	}
	return values, nil
}

// LoadConfig loads configuration from the working directory and home.
func LoadConfig() (*Config, error) {
	return NewLoader(AppFs).Load()
}

// SaveConfig saves configuration to file
func SaveConfig(fs afero.Fs, cfg *Config) (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}

	configPath := filepath.Join(home, ".config", "r2dbc")
	if err := fs.MkdirAll(configPath, 0755); err != nil {
		return "", err
	}

	v := viper.New()
	v.SetFs(fs)
	v.Set("provider", cfg.Provider)
	v.Set("database_url", cfg.DatabaseURL)
	v.Set("max_connections", cfg.MaxConnections)
	v.Set("connect_timeout", cfg.ConnectTimeout.String())
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)
	v.Set("retry.initial_interval", cfg.Retry.InitialInterval.String())
	v.Set("retry.max_interval", cfg.Retry.MaxInterval.String())
	v.Set("mapping.case_sensitive_keys", cfg.Mapping.CaseSensitiveKeys)

	configFile := filepath.Join(configPath, configName+".yaml")
	return configFile, v.WriteConfigAs(configFile)
}

// DetectProvider guesses the provider from a connection string.
func DetectProvider(url string) string {
	switch {
	case strings.HasPrefix(url, "mysql://") || strings.Contains(url, "@tcp("):
		return "mysql"
	case strings.HasPrefix(url, "sqlite:") || strings.HasPrefix(url, "file:") ||
		strings.Contains(url, ":memory:") || strings.HasSuffix(url, ".db"):
		return "sqlite"
	default:
		return "postgres"
	}
}
