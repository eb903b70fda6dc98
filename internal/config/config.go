package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port        string   `yaml:"port" env:"SERVER_PORT"`
		Mode        string   `yaml:"mode" env:"SERVER_MODE"`
		StoragePath string   `yaml:"storage_path" env:"SERVER_STORAGE_PATH"`
		PublicURL   string   `yaml:"public_url" env:"SERVER_PUBLIC_URL"`
		CORSOrigins []string `yaml:"cors_origins" env:"SERVER_CORS_ORIGINS"`
	} `yaml:"server"`

	Database struct {
		Host            string        `yaml:"host" env:"DB_HOST"`
		Port            string        `yaml:"port" env:"DB_PORT"`
		User            string        `yaml:"user" env:"DB_USER"`
		Password        string        `yaml:"password" env:"DB_PASSWORD"`
		DBName          string        `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string        `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxConns        int           `yaml:"max_conns" env:"DB_MAX_CONNS"`
		MinConns        int           `yaml:"min_conns" env:"DB_MIN_CONNS"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
	} `yaml:"database"`

	// JWT configures validation of the tokens minted by the auth provider
	JWT struct {
		Secret string `yaml:"secret" env:"JWT_SECRET"`
		Issuer string `yaml:"issuer" env:"JWT_ISSUER"`
	} `yaml:"jwt"`

	Logging struct {
		Level  string `yaml:"level" env:"LOG_LEVEL"`
		Format string `yaml:"format" env:"LOG_FORMAT"`
	} `yaml:"logging"`

	SMTP struct {
		Host     string `yaml:"host" env:"SMTP_HOST"`
		Port     int    `yaml:"port" env:"SMTP_PORT"`
		Username string `yaml:"username" env:"SMTP_USERNAME"`
		Password string `yaml:"password" env:"SMTP_PASSWORD"`
		From     string `yaml:"from" env:"SMTP_FROM"`
	} `yaml:"smtp"`

	CallProvider struct {
		BaseURL string        `yaml:"base_url" env:"CALL_PROVIDER_BASE_URL"`
		APIKey  string        `yaml:"api_key" env:"CALL_PROVIDER_API_KEY"`
		Timeout time.Duration `yaml:"timeout" env:"CALL_PROVIDER_TIMEOUT"`
	} `yaml:"call_provider"`

	Verification struct {
		CodeTTL time.Duration `yaml:"code_ttl" env:"VERIFICATION_CODE_TTL"`
	} `yaml:"verification"`

	Feed struct {
		HostLimit int `yaml:"host_limit" env:"FEED_HOST_LIMIT"`
	} `yaml:"feed"`
}

// LoadConfig reads the YAML file at configPath (optional), applies values
// from a .env file and the process environment, then validates the result.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	file, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// loadDotEnv exports the variables of a .env file without overriding the
// ones already present in the environment. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.StoragePath = "uploads"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "peers"
	config.Database.SSLMode = "disable"
	config.Database.MaxConns = 20
	config.Database.MinConns = 2
	config.Database.ConnMaxLifetime = time.Hour

	config.JWT.Issuer = "peers"

	config.Logging.Level = "info"
	config.Logging.Format = "json"

	config.SMTP.Port = 587
	config.SMTP.From = "no-reply@peers.app"

	config.CallProvider.Timeout = 10 * time.Second

	config.Verification.CodeTTL = 30 * time.Minute

	config.Feed.HostLimit = 12
}

func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Verification.CodeTTL <= 0 {
		return fmt.Errorf("verification code TTL must be positive")
	}

	if config.Feed.HostLimit <= 0 {
		return fmt.Errorf("feed host limit must be positive")
	}

	if config.CallProvider.BaseURL != "" {
		if _, err := url.ParseRequestURI(config.CallProvider.BaseURL); err != nil {
			return fmt.Errorf("invalid call provider base URL: %w", err)
		}
	}

	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", config.Logging.Format)
	}

	return nil
}

// IsProduction reports whether the server runs in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Mode, "production")
}

// BaseURL is the externally reachable URL of the API, used for file links
func (c *Config) BaseURL() string {
	if c.Server.PublicURL != "" {
		return strings.TrimRight(c.Server.PublicURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     c.Database.Host + ":" + c.Database.Port,
		Path:     c.Database.DBName,
		RawQuery: "sslmode=" + sslMode,
	}
	return u.String()
}
