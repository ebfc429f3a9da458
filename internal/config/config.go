package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds process configuration. Values come from an optional
// YAML file, with environment variables taking precedence.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Host string `yaml:"host"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	// AdminInviteCode promotes a registration straight to an active
	// admin account when it matches. Empty disables the shortcut.
	AdminInviteCode string        `yaml:"admin_invite_code"`
	MinPasswordLen  int           `yaml:"min_password_len"`
	UserCacheTTL    time.Duration `yaml:"user_cache_ttl"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Server:   ServerConfig{Port: "8008", Host: ""},
		Database: DatabaseConfig{Path: "scrumboard.db"},
		Auth: AuthConfig{
			MinPasswordLen: 8,
			UserCacheTTL:   30 * time.Second,
		},
	}
}

// Load reads the config file at path (skipped when absent) and then
// applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ADMIN_INVITE_CODE"); v != "" {
		cfg.Auth.AdminInviteCode = v
	}
	if cfg.Auth.MinPasswordLen <= 0 {
		cfg.Auth.MinPasswordLen = 8
	}
	if cfg.Auth.UserCacheTTL <= 0 {
		cfg.Auth.UserCacheTTL = 30 * time.Second
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
