// Tripmatch - Trip Recommendation Service
// Copyright 2026 Pathfinder HQ
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pathfinderhq/tripmatch

// Package config loads the service configuration from layered sources:
// built-in defaults, an optional YAML file, and environment variables,
// in increasing order of precedence.
package config

import (
	"fmt"
	"time"

	"github.com/pathfinderhq/tripmatch/internal/recommend"
)

// Config is the root service configuration.
type Config struct {
	Server    ServerConfig     `json:"server"`
	Database  DatabaseConfig   `json:"database"`
	Logging   LoggingConfig    `json:"logging"`
	Security  SecurityConfig   `json:"security"`
	Recommend recommend.Config `json:"recommend"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	// Host is the listen address.
	Host string `json:"host"`

	// Port is the listen port.
	Port int `json:"port"`

	// ReadTimeout and WriteTimeout bound request handling.
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`

	// ShutdownTimeout bounds graceful shutdown on SIGINT/SIGTERM.
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// DatabaseConfig holds the SQLite catalog settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" runs fully in memory.
	Path string `json:"path"`

	// SeedPath optionally names a JSON snapshot loaded into the catalog
	// at startup. Empty disables seeding.
	SeedPath string `json:"seed_path"`
}

// LoggingConfig holds the zerolog settings.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	Level string `json:"level"`

	// Format is json or console.
	Format string `json:"format"`

	// Caller includes caller file and line in log records.
	Caller bool `json:"caller"`
}

// SecurityConfig holds the HTTP-edge protections.
type SecurityConfig struct {
	// CORSOrigins lists allowed origins; empty disables CORS.
	CORSOrigins []string `json:"cors_origins"`

	// RateLimitRequests is the per-IP request budget per window.
	// Zero disables rate limiting.
	RateLimitRequests int `json:"rate_limit_requests"`

	// RateLimitWindow is the rate limit window.
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

// defaultConfig returns a Config with the production defaults. Defaults
// are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Path:     "/data/tripmatch.db",
			SeedPath: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Recommend: *recommend.DefaultConfig(),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server.shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path must not be empty")
	}
	if c.Security.RateLimitRequests < 0 {
		return fmt.Errorf("security.rate_limit_requests must be non-negative, got %d", c.Security.RateLimitRequests)
	}
	if c.Security.RateLimitRequests > 0 && c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("security.rate_limit_window must be positive when rate limiting is enabled, got %s",
			c.Security.RateLimitWindow)
	}
	if err := c.Recommend.Validate(); err != nil {
		return fmt.Errorf("recommend: %w", err)
	}
	return nil
}

// Addr returns the host:port listen address.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
