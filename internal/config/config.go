package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dl-alexandre/rmirror/internal/resolver"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
	json "github.com/goccy/go-json"
)

const (
	// ConfigFileName is the name of the config file
	ConfigFileName = "config.json"
	// EnvPrefix is the prefix for environment variables
	EnvPrefix = "RMIRROR_"
)

// Config holds application configuration
type Config struct {
	// DefaultRepository is used when no valid org/repo coordinate is given
	DefaultRepository string `json:"defaultRepository"`

	// DefaultRef is the branch or tag to mirror; empty means the default branch
	DefaultRef string `json:"defaultRef,omitempty"`

	// APIBaseURL is the base of the repository contents API
	APIBaseURL string `json:"apiBaseURL"`

	// DefaultProvider selects the content provider (github, gdrive)
	DefaultProvider string `json:"defaultProvider"`

	// DriveAPIKey is the API key used to list public Drive folders
	DriveAPIKey string `json:"driveAPIKey,omitempty"`

	// RequestTimeout is the per-request timeout in seconds
	RequestTimeout int `json:"requestTimeout"`

	// UserAgent is sent with every API request
	UserAgent string `json:"userAgent,omitempty"`

	// DefaultOutputFormat is the default output format (json, table)
	DefaultOutputFormat types.OutputFormat `json:"defaultOutputFormat"`

	// LogLevel sets the logging verbosity (quiet, normal, verbose, debug)
	LogLevel string `json:"logLevel"`

	// ColorOutput enables color in console logs when stderr is a terminal
	ColorOutput bool `json:"colorOutput"`

	// RecordHistory stores a summary of every run in the history database
	RecordHistory bool `json:"recordHistory"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		DefaultRepository:   utils.DefaultRepository,
		APIBaseURL:          utils.GitHubAPIBase,
		DefaultProvider:     utils.ProviderGitHub,
		RequestTimeout:      utils.DefaultRequestTimeoutSec,
		DefaultOutputFormat: types.OutputFormatTable,
		LogLevel:            "normal",
		ColorOutput:         true,
		RecordHistory:       true,
	}
}

// Load loads configuration with precedence: env vars > config file > defaults
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(configPath)
}

// LoadFrom loads configuration from an explicit file path
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if err := cfg.loadFromFile(path); err != nil {
		// Config file not existing is not an error
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	cfg.loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv(EnvPrefix + "DEFAULT_REPOSITORY"); v != "" {
		c.DefaultRepository = v
	}
	if v := os.Getenv(EnvPrefix + "DEFAULT_REF"); v != "" {
		c.DefaultRef = v
	}
	if v := os.Getenv(EnvPrefix + "API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv(EnvPrefix + "PROVIDER"); v != "" {
		c.DefaultProvider = v
	}
	if v := os.Getenv(EnvPrefix + "DRIVE_API_KEY"); v != "" {
		c.DriveAPIKey = v
	}
	if v := os.Getenv(EnvPrefix + "REQUEST_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			c.RequestTimeout = timeout
		}
	}
	if v := os.Getenv(EnvPrefix + "USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv(EnvPrefix + "OUTPUT_FORMAT"); v != "" {
		c.DefaultOutputFormat = types.OutputFormat(v)
	}
	if v := os.Getenv(EnvPrefix + "LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv(EnvPrefix + "COLOR_OUTPUT"); v != "" {
		c.ColorOutput = parseBool(v)
	}
	if v := os.Getenv(EnvPrefix + "RECORD_HISTORY"); v != "" {
		c.RecordHistory = parseBool(v)
	}
}

// Save saves the configuration to the default config file
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}
	return c.SaveTo(configPath)
}

// SaveTo writes the configuration to path
func (c *Config) SaveTo(configPath string) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// The file may hold a Drive API key
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := resolver.ParseCoordinate(c.DefaultRepository); err != nil {
		return fmt.Errorf("invalid default repository: %w", err)
	}

	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q (must be an absolute http(s) URL)", c.APIBaseURL)
	}

	if c.DefaultProvider != utils.ProviderGitHub && c.DefaultProvider != utils.ProviderDrive {
		return fmt.Errorf("invalid provider: %s (must be '%s' or '%s')", c.DefaultProvider, utils.ProviderGitHub, utils.ProviderDrive)
	}

	if c.DefaultOutputFormat != types.OutputFormatJSON &&
		c.DefaultOutputFormat != types.OutputFormatTable {
		return fmt.Errorf("invalid output format: %s (must be 'json' or 'table')", c.DefaultOutputFormat)
	}

	if c.RequestTimeout < 1 || c.RequestTimeout > 3600 {
		return fmt.Errorf("request timeout must be between 1 and 3600 seconds, got: %d", c.RequestTimeout)
	}

	validLogLevels := []string{"quiet", "normal", "verbose", "debug"}
	isValid := false
	for _, level := range validLogLevels {
		if c.LogLevel == level {
			isValid = true
			break
		}
	}
	if !isValid {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	return nil
}

// GetRequestTimeout returns the request timeout as a duration
func (c *Config) GetRequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Set updates a single key by its JSON name
func (c *Config) Set(key, value string) error {
	switch strings.ToLower(key) {
	case "defaultrepository":
		c.DefaultRepository = value
	case "defaultref":
		c.DefaultRef = value
	case "apibaseurl":
		c.APIBaseURL = strings.TrimRight(value, "/")
	case "defaultprovider":
		c.DefaultProvider = value
	case "driveapikey":
		c.DriveAPIKey = value
	case "requesttimeout":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("requestTimeout must be an integer: %w", err)
		}
		c.RequestTimeout = timeout
	case "useragent":
		c.UserAgent = value
	case "defaultoutputformat":
		c.DefaultOutputFormat = types.OutputFormat(value)
	case "loglevel":
		c.LogLevel = value
	case "coloroutput":
		c.ColorOutput = parseBool(value)
	case "recordhistory":
		c.RecordHistory = parseBool(value)
	default:
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return c.Validate()
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	if dir := os.Getenv(EnvPrefix + "CONFIG_DIR"); dir != "" {
		return dir, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(homeDir, ".config", "rmirror"), nil
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on"
}
