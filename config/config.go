// Package config loads runtime settings. Sources are layered: built-in
// defaults, then an optional YAML file, then environment variables (a .env
// file in the working directory is loaded into the environment first).
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const ConfigPathEnvVar = "CONFIG_PATH"

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Seats    SeatsConfig    `koanf:"seats"`
	Metering MeteringConfig `koanf:"metering"`
	Orders   OrdersConfig   `koanf:"orders"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Port           string          `koanf:"port"`
	Mode           string          `koanf:"mode"`
	BaseURL        string          `koanf:"base_url"`
	UploadDir      string          `koanf:"upload_dir"`
	MaxUploadBytes int64           `koanf:"max_upload_bytes"`
	CORSOrigin     string          `koanf:"cors_origin"`
	TrustedProxies []string        `koanf:"trusted_proxies"`
	RateLimit      RateLimitConfig `koanf:"rate_limit"`
	ShutdownGrace  time.Duration   `koanf:"shutdown_grace"`
}

type RateLimitConfig struct {
	Enabled bool `koanf:"enabled"`
	// Requests per second per client IP across the whole API.
	PerSecond int `koanf:"per_second"`
	// Login/register attempts per minute per client IP.
	AuthPerMinute int `koanf:"auth_per_minute"`
}

type DatabaseConfig struct {
	// Driver is mysql, postgres or sqlite.
	Driver       string `koanf:"driver"`
	DSN          string `koanf:"dsn"`
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	LogLevel     string `koanf:"log_level"`
}

type AuthConfig struct {
	JWTSecret            string        `koanf:"jwt_secret"`
	TokenTTL             time.Duration `koanf:"token_ttl"`
	AdminCode            string        `koanf:"admin_code"`
	BcryptCost           int           `koanf:"bcrypt_cost"`
	DefaultResetPassword string        `koanf:"default_reset_password"`
}

type SeatsConfig struct {
	Count       int  `koanf:"count"`
	ResetOnBoot bool `koanf:"reset_on_boot"`
}

const (
	MeteringScopeAll    = "all"
	MeteringScopeSeated = "seated"
)

type MeteringConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Interval time.Duration `koanf:"interval"`
	Scope    string        `koanf:"scope"`
}

type OrdersConfig struct {
	PermissiveTransitions bool `koanf:"permissive_transitions"`
}

type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Default returns the built-in settings. Tests start from it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "3000",
			Mode:           "debug",
			BaseURL:        "http://localhost:3000",
			UploadDir:      "uploads",
			MaxUploadBytes: 10 << 20,
			CORSOrigin:     "*",
			TrustedProxies: []string{"127.0.0.1"},
			RateLimit: RateLimitConfig{
				Enabled:       true,
				PerSecond:     50,
				AuthPerMinute: 5,
			},
			ShutdownGrace: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:       "mysql",
			Host:         "localhost",
			Port:         3306,
			User:         "root",
			Name:         "pc_cafe",
			MaxOpenConns: 10,
			LogLevel:     "warn",
		},
		Auth: AuthConfig{
			TokenTTL:             24 * time.Hour,
			BcryptCost:           10,
			DefaultResetPassword: "1234",
		},
		Seats: SeatsConfig{
			Count:       21,
			ResetOnBoot: true,
		},
		Metering: MeteringConfig{
			Enabled:  true,
			Interval: time.Second,
			Scope:    MeteringScopeAll,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration from defaults, the optional YAML file and
// the environment, then validates it.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// comma separated env values
	if raw, ok := k.Get("server.trusted_proxies").(string); ok {
		if err := k.Set("server.trusted_proxies", splitList(raw)); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"port":                   "server.port",
	"gin_mode":               "server.mode",
	"base_url":               "server.base_url",
	"upload_dir":             "server.upload_dir",
	"max_upload_bytes":       "server.max_upload_bytes",
	"cors_origin":            "server.cors_origin",
	"trusted_proxies":        "server.trusted_proxies",
	"rate_limit_enabled":     "server.rate_limit.enabled",
	"rate_limit_per_second":  "server.rate_limit.per_second",
	"auth_rate_per_minute":   "server.rate_limit.auth_per_minute",
	"shutdown_grace":         "server.shutdown_grace",
	"db_driver":              "database.driver",
	"db_dsn":                 "database.dsn",
	"db_host":                "database.host",
	"db_port":                "database.port",
	"db_user":                "database.user",
	"db_password":            "database.password",
	"db_name":                "database.name",
	"db_max_open_conns":      "database.max_open_conns",
	"db_log_level":           "database.log_level",
	"jwt_secret":             "auth.jwt_secret",
	"token_ttl":              "auth.token_ttl",
	"admin_code":             "auth.admin_code",
	"bcrypt_cost":            "auth.bcrypt_cost",
	"default_reset_password": "auth.default_reset_password",
	"seat_count":             "seats.count",
	"seat_reset_on_boot":     "seats.reset_on_boot",
	"metering_enabled":       "metering.enabled",
	"metering_interval":      "metering.interval",
	"metering_scope":         "metering.scope",
	"orders_permissive":      "orders.permissive_transitions",
	"log_level":              "logging.level",
	"log_format":             "logging.format",
}

// envTransformFunc maps known variable names to config keys. Everything
// else in the environment is ignored.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is required"))
	}
	if c.Server.UploadDir == "" {
		errs = append(errs, errors.New("server.upload_dir is required"))
	}
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		errs = append(errs, fmt.Errorf("database.driver %q is not supported", c.Database.Driver))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required (JWT_SECRET)"))
	}
	if c.Auth.AdminCode == "" {
		errs = append(errs, errors.New("auth.admin_code is required (ADMIN_CODE)"))
	}
	if len(c.Auth.DefaultResetPassword) > 72 {
		errs = append(errs, errors.New("auth.default_reset_password must be at most 72 bytes"))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	if c.Seats.Count < 1 {
		errs = append(errs, errors.New("seats.count must be at least 1"))
	}
	if c.Metering.Interval < time.Second {
		errs = append(errs, errors.New("metering.interval must be at least 1s"))
	}
	switch c.Metering.Scope {
	case MeteringScopeAll, MeteringScopeSeated:
	default:
		errs = append(errs, fmt.Errorf("metering.scope %q must be %q or %q", c.Metering.Scope, MeteringScopeAll, MeteringScopeSeated))
	}

	return errors.Join(errs...)
}
