package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	EnvProduction = "production"
)

type Config struct {
	Environment string   `toml:"environment"`
	LogLevel    string   `toml:"log_level"`
	Server      Server   `toml:"server"`
	Database    Database `toml:"database"`
	Auth        Auth     `toml:"auth"`
}

type Server struct {
	Port      int    `toml:"port"`
	APIPrefix string `toml:"api_prefix"`
}

type Database struct {
	Driver   string `toml:"driver"`
	Path     string `toml:"path"`
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	User     string `toml:"user"`
	Password string `toml:"password"`
	Name     string `toml:"name"`
	SSLMode  string `toml:"sslmode"`
}

type Auth struct {
	Secret string `toml:"secret"`
}

func Default() Config {
	return Config{
		Environment: "development",
		LogLevel:    "info",
		Server:      Server{Port: 3000, APIPrefix: "/api"},
		Database: Database{
			Driver:  DriverSQLite,
			Port:    5432,
			SSLMode: "disable",
		},
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskboard", "config.toml"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the TOML file at path on top of the defaults. A missing file is
// not an error.
func Load(path string) (Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	if _, err := toml.DecodeFile(path, &config); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	config.Database.Driver = NormalizeDriver(config.Database.Driver)
	return config, nil
}

// NormalizeDriver maps driver aliases ("pgx", "postgresql", any case) onto
// DriverSQLite or DriverPostgres. Unknown names are returned lowercased.
func NormalizeDriver(name string) string {
	switch driver := strings.ToLower(strings.TrimSpace(name)); driver {
	case DriverPostgres, "pgx", "postgresql":
		return DriverPostgres
	default:
		return driver
	}
}

// ApplyEnv overrides fields from environment variables looked up through
// getenv. Empty values are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	setString := func(dst *string, key string) {
		if value := strings.TrimSpace(getenv(key)); value != "" {
			*dst = value
		}
	}
	setInt := func(dst *int, key string) error {
		value := strings.TrimSpace(getenv(key))
		if value == "" {
			return nil
		}
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = parsed
		return nil
	}

	setString(&c.Environment, "APP_ENV")
	setString(&c.LogLevel, "LOG_LEVEL")
	if err := setInt(&c.Server.Port, "PORT"); err != nil {
		return err
	}
	setString(&c.Database.Driver, "DB_DRIVER")
	c.Database.Driver = NormalizeDriver(c.Database.Driver)
	setString(&c.Database.Path, "DB_PATH")
	setString(&c.Database.Host, "DB_HOST")
	if err := setInt(&c.Database.Port, "DB_PORT"); err != nil {
		return err
	}
	setString(&c.Database.User, "DB_USER")
	setString(&c.Database.Password, "DB_PASSWORD")
	setString(&c.Database.Name, "DB_DATABASE")
	setString(&c.Database.SSLMode, "DB_SSLMODE")
	setString(&c.Auth.Secret, "JWT_SECRET")
	return nil
}

func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	switch NormalizeDriver(c.Database.Driver) {
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database path is required for driver %q", DriverSQLite)
		}
	case DriverPostgres:
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("database host and name are required for driver %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Server.APIPrefix != "" && !strings.HasPrefix(c.Server.APIPrefix, "/") {
		return fmt.Errorf("api prefix must start with '/': %q", c.Server.APIPrefix)
	}
	return nil
}

func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), EnvProduction)
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// DSN returns the data source name for the configured driver.
func (d Database) DSN() string {
	if NormalizeDriver(d.Driver) != DriverPostgres {
		return d.Path
	}

	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.User != "" {
		if d.Password != "" {
			u.User = url.UserPassword(d.User, d.Password)
		} else {
			u.User = url.User(d.User)
		}
	}
	if d.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": []string{d.SSLMode}}.Encode()
	}
	return u.String()
}
