package config

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Event source kinds.
const (
	SourceCSV    = "csv"
	SourceSQLite = "sqlite"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Events   EventsConfig   `yaml:"events"`
	Logger   LoggerConfig   `yaml:"logger"`
	Security SecurityConfig `yaml:"security"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// EventsConfig selects where raw check events come from and which
// enrichment files to load alongside them.
type EventsConfig struct {
	Source        string `yaml:"source"`     // "csv" or "sqlite"
	CSVFile       string `yaml:"csv_file"`   // used when source is csv
	SQLitePath    string `yaml:"sqlite_path"` // used when source is sqlite
	PayloadsFile  string `yaml:"payloads_file"`
	POSLabelsFile string `yaml:"pos_labels_file"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type SecurityConfig struct {
	EnableRateLimit bool     `yaml:"rate_limit_enabled"`
	RateLimitRPS    int      `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	TrustedProxies  []string `yaml:"trusted_proxies"`
}

// Load builds the configuration in three layers: defaults, then an
// optional YAML file, then environment variables. Env always wins.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            8084,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Events: EventsConfig{
			Source:  SourceCSV,
			CSVFile: "events.csv",
		},
		Logger: LoggerConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			EnableRateLimit: true,
			RateLimitRPS:    100,
			RateLimitBurst:  10,
			AllowedOrigins:  []string{"http://localhost:8084"},
			TrustedProxies:  []string{"127.0.0.1"},
		},
	}
}

func applyEnv(cfg *Config) {
	envString("SERVER_HOST", &cfg.Server.Host)
	envInt("SERVER_PORT", &cfg.Server.Port)
	envDuration("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	envDuration("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	envDuration("SERVER_IDLE_TIMEOUT", &cfg.Server.IdleTimeout)
	envDuration("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)

	envString("EVENTS_SOURCE", &cfg.Events.Source)
	envString("EVENTS_CSV_FILE", &cfg.Events.CSVFile)
	envString("EVENTS_SQLITE_PATH", &cfg.Events.SQLitePath)
	envString("EVENTS_PAYLOADS_FILE", &cfg.Events.PayloadsFile)
	envString("EVENTS_POS_LABELS_FILE", &cfg.Events.POSLabelsFile)

	envString("LOG_LEVEL", &cfg.Logger.Level)
	envString("LOG_FORMAT", &cfg.Logger.Format)

	envBool("SECURITY_RATE_LIMIT_ENABLED", &cfg.Security.EnableRateLimit)
	envInt("SECURITY_RATE_LIMIT_RPS", &cfg.Security.RateLimitRPS)
	envInt("SECURITY_RATE_LIMIT_BURST", &cfg.Security.RateLimitBurst)
	envStringSlice("SECURITY_ALLOWED_ORIGINS", &cfg.Security.AllowedOrigins)
	envStringSlice("SECURITY_TRUSTED_PROXIES", &cfg.Security.TrustedProxies)
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}

	switch c.Events.Source {
	case SourceCSV:
		if c.Events.CSVFile == "" {
			return fmt.Errorf("csv event source requires a file path")
		}
	case SourceSQLite:
		if c.Events.SQLitePath == "" {
			return fmt.Errorf("sqlite event source requires a database path")
		}
	default:
		return fmt.Errorf("unknown event source %q, must be %q or %q", c.Events.Source, SourceCSV, SourceSQLite)
	}

	if !slices.Contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(c.Logger.Level)) {
		return fmt.Errorf("invalid log level %q", c.Logger.Level)
	}
	if !slices.Contains([]string{"json", "text"}, strings.ToLower(c.Logger.Format)) {
		return fmt.Errorf("invalid log format %q", c.Logger.Format)
	}

	if c.Security.RateLimitRPS <= 0 || c.Security.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit RPS and burst must be positive")
	}
	return nil
}

// Address returns the host:port the server binds to.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *time.Duration) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func envStringSlice(key string, dst *[]string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.Split(v, ",")
	}
}
