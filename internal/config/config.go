package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	// API settings
	APIBaseURL     string        `mapstructure:"api_base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Token          string        `mapstructure:"token"`

	// Local state
	StatePath string `mapstructure:"state_path"`

	// Logging
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
	Verbose  bool   `mapstructure:"verbose"`

	// Mock server
	MockAddr string `mapstructure:"mock_addr"`
}

// envPrefix is prepended to every environment key, e.g. MINDSCAPE_API_BASE_URL.
const envPrefix = "MINDSCAPE"

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"api-url":   "api_base_url",
	"timeout":   "request_timeout",
	"token":     "token",
	"state":     "state_path",
	"log-level": "log_level",
	"log-file":  "log_file",
	"verbose":   "verbose",
	"addr":      "mock_addr",
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:3000/api/v1",
		RequestTimeout: 30 * time.Second,

		StatePath: expandHome("~/.mindscape/state.json"),

		LogLevel: "info",
		LogFile:  expandHome("~/.mindscape/mindscape.log"),
		Verbose:  false,

		MockAddr: ":4000",
	}
}

// Load builds the configuration from defaults, an optional YAML file, a .env
// file, MINDSCAPE_* environment variables and finally any flags that were set.
// configFile may be empty, in which case config.yaml is looked up in the
// working directory and ~/.mindscape.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	// A missing .env is normal
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v, NewConfig())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(expandHome("~/.mindscape"))
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.StatePath = expandHome(cfg.StatePath)
	cfg.LogFile = expandHome(cfg.LogFile)
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api_base_url", cfg.APIBaseURL)
	v.SetDefault("request_timeout", cfg.RequestTimeout)
	v.SetDefault("token", cfg.Token)
	v.SetDefault("state_path", cfg.StatePath)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("mock_addr", cfg.MockAddr)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("API base URL cannot be empty")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("API base URL must be an absolute http(s) URL, got %q", c.APIBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.StatePath == "" {
		return fmt.Errorf("state path cannot be empty")
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}

// expandHome expands the ~ in file paths to the user's home directory
func expandHome(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir := getHomeDir()
		return homeDir + path[1:]
	}
	return path
}

// getHomeDir returns the user's home directory
func getHomeDir() string {
	if home := GetEnv("HOME"); home != "" {
		return home
	}
	// Fallback for Windows
	if home := GetEnv("USERPROFILE"); home != "" {
		return home
	}
	return "."
}

// GetEnv is a wrapper around os.Getenv for easier testing
var GetEnv = os.Getenv
