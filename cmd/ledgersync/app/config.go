package app

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files, and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Backend configuration
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxInFlight   int
	RecreateStale bool

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (handled by cobra)
// 2. Environment variables (LEDGERSYNC_*)
// 3. .env files
// 4. Config file (~/.ledgersync.yaml)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.SetEnvPrefix("LEDGERSYNC")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".ledgersync")
		}
	}

	// Missing config files are fine; env and flags still apply.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		BaseURL:       viper.GetString("base_url"),
		APIKey:        viper.GetString("api_key"),
		Timeout:       viper.GetDuration("timeout"),
		MaxInFlight:   viper.GetInt("max_in_flight"),
		RecreateStale: viper.GetBool("recreate_stale"),

		LogLevel:  viper.GetString("log_level"),
		LogFormat: getEnvOrDefault("LEDGERSYNC_LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LEDGERSYNC_LOG_OUTPUT", "stderr"),
	}

	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags so flag
// values take precedence over config file and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, baseURL, apiKey string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if baseURL != "" {
		c.BaseURL = baseURL
	}
	if apiKey != "" {
		c.APIKey = apiKey
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}
	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
