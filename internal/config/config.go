package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	SSH        SSHConfig        `mapstructure:"ssh"`
	Fallback   FallbackConfig   `mapstructure:"fallback"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// Addr is the host:port of the database as seen from the SSH server, or directly.
func (c DatabaseConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type SSHConfig struct {
	Enabled    bool          `mapstructure:"-"`
	Host       string        `mapstructure:"host"`
	Port       int           `mapstructure:"port"`
	User       string        `mapstructure:"user"`
	Password   string        `mapstructure:"password"`
	KnownHosts string        `mapstructure:"known_hosts"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

// Addr is the host:port of the SSH server.
func (c SSHConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

type FallbackConfig struct {
	Backend  string `mapstructure:"backend"`
	FilePath string `mapstructure:"file"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Key      string `mapstructure:"key"`
}

type MonitoringConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"

	FallbackFile  = "file"
	FallbackRedis = "redis"
)

// envBindings maps config keys onto the environment variable names the
// deployment uses. They carry no prefix.
var envBindings = map[string]string{
	"server.host":             "SERVER_HOST",
	"server.port":             "SERVER_PORT",
	"server.read_timeout":     "SERVER_READ_TIMEOUT",
	"server.write_timeout":    "SERVER_WRITE_TIMEOUT",
	"server.shutdown_timeout": "SERVER_SHUTDOWN_TIMEOUT",

	"database.driver":   "DB_DRIVER",
	"database.host":     "DB_HOST",
	"database.port":     "DB_PORT",
	"database.user":     "DB_USERNAME",
	"database.password": "DB_PASSWORD",
	"database.dbname":   "DB_NAME",
	"database.sslmode":  "DB_SSLMODE",

	"ssh.enabled":     "USE_SSH_TUNNEL",
	"ssh.host":        "SSH_HOST",
	"ssh.port":        "SSH_PORT",
	"ssh.user":        "SSH_USER",
	"ssh.password":    "SSH_PASSWORD",
	"ssh.known_hosts": "SSH_KNOWN_HOSTS",
	"ssh.timeout":     "SSH_TIMEOUT",

	"fallback.backend": "FALLBACK_BACKEND",
	"fallback.file":    "FALLBACK_FILE",

	"redis.host":     "REDIS_HOST",
	"redis.port":     "REDIS_PORT",
	"redis.password": "REDIS_PASSWORD",
	"redis.db":       "REDIS_DB",
	"redis.key":      "REDIS_KEY",

	"monitoring.log_level": "LOG_LEVEL",
}

// Load initializes configuration from the environment, a .env file and an optional config file
func Load() (*Config, error) {
	return LoadFrom(".env", "./config")
}

// LoadFrom is Load with explicit .env and config directory locations.
func LoadFrom(envFile, configDir string) (*Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return nil, err
	}

	v := viper.New()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("error binding %s: %w", env, err)
		}
	}

	// Set defaults
	setDefaults(v)

	// Load config file if exists
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.SSH.Enabled = IsTruthy(v.GetString("ssh.enabled"))

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// loadDotEnv copies KEY=value pairs from path into the process environment.
// Variables that are already set win over the file.
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading %s: %w", path, err)
	}

	for _, key := range env.AllKeys() {
		name := strings.ToUpper(key)
		if _, set := os.LookupEnv(name); set {
			continue
		}
		if err := os.Setenv(name, env.GetString(key)); err != nil {
			return fmt.Errorf("error setting %s: %w", name, err)
		}
	}
	return nil
}

// IsTruthy reports whether s is one of "true", "yes" or "1", ignoring case.
func IsTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 5016)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")

	// SSH defaults
	v.SetDefault("ssh.enabled", "false")
	v.SetDefault("ssh.port", 22)
	v.SetDefault("ssh.timeout", "10s")

	// Fallback defaults
	v.SetDefault("fallback.backend", FallbackFile)
	v.SetDefault("fallback.file", "data.json")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key", "sensorbridge:fallback")

	// Monitoring defaults
	v.SetDefault("monitoring.log_level", "info")
}

func validateConfig(config *Config) error {
	if err := validatePort("server port", config.Server.Port); err != nil {
		return err
	}

	switch config.Database.Driver {
	case DriverPostgres:
		if config.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if config.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if config.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
		if err := validatePort("database port", config.Database.Port); err != nil {
			return err
		}
	case DriverSQLite:
		if config.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	default:
		return fmt.Errorf("unsupported database driver %q", config.Database.Driver)
	}

	if config.SSH.Enabled {
		if config.SSH.Host == "" {
			return fmt.Errorf("ssh host is required when the tunnel is enabled")
		}
		if config.SSH.User == "" {
			return fmt.Errorf("ssh user is required when the tunnel is enabled")
		}
		if err := validatePort("ssh port", config.SSH.Port); err != nil {
			return err
		}
	}

	switch config.Fallback.Backend {
	case FallbackFile:
		if config.Fallback.FilePath == "" {
			return fmt.Errorf("fallback file path is required")
		}
	case FallbackRedis:
		if config.Redis.Host == "" {
			return fmt.Errorf("redis host is required for the redis fallback")
		}
		if err := validatePort("redis port", config.Redis.Port); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported fallback backend %q", config.Fallback.Backend)
	}
	return nil
}

func validatePort(name string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s out of range: %d", name, port)
	}
	return nil
}
