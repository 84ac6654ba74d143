// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading from environment
// variables. It provides a centralized Config struct used across the application.
package config

import (
	"fmt"
	"os"
	"time"
)

// RendererMode selects how the Render Job Supervisor dispatches jobs.
type RendererMode string

const (
	// RendererModeChromeDP drives the pooled headless-Chrome adapter as
	// the primary renderer, falling back to static HTML on failure.
	RendererModeChromeDP RendererMode = "chromedp"
	// RendererModeHTMLFallbackOnly skips the Chrome adapter entirely,
	// useful on hosts with no Chrome binary available.
	RendererModeHTMLFallbackOnly RendererMode = "html_fallback_only"
)

// Config holds all application configuration values loaded from the environment.
type Config struct {
	// Server settings
	Host string
	Port string
	Env  string // "development", "production", "testing"

	// PostgreSQL connection
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Valkey (Redis-compatible cache + job-cancellation signal bus)
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// Output & rendering
	OutputDir       string
	TemplatePackDir string
	RendererMode    RendererMode
	ChromeBinPath   string // optional override; empty lets chromedp locate Chrome
	RenderTimeout   time.Duration

	// Scheduler
	RenderSweepInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults
// for development where appropriate. Returns an error if critical values
// are missing in production mode.
func Load() (*Config, error) {
	cfg := &Config{
		Host: envOrDefault("APP_HOST", "0.0.0.0"),
		Port: envOrDefault("APP_PORT", "8080"),
		Env:  envOrDefault("APP_ENV", "development"),

		DBHost:     envOrDefault("POSTGRES_HOST", "localhost"),
		DBPort:     envOrDefault("POSTGRES_PORT", "5432"),
		DBUser:     envOrDefault("POSTGRES_USER", "magazinecore"),
		DBPassword: envOrDefault("POSTGRES_PASSWORD", "changeme"),
		DBName:     envOrDefault("POSTGRES_DB", "magazinecore"),

		ValkeyHost:     envOrDefault("VALKEY_HOST", "localhost"),
		ValkeyPort:     envOrDefault("VALKEY_PORT", "6379"),
		ValkeyPassword: os.Getenv("VALKEY_PASSWORD"),

		OutputDir:       envOrDefault("OUTPUT_DIR", "./output"),
		TemplatePackDir: envOrDefault("TEMPLATE_PACK_DIR", "./packs"),
		RendererMode:    RendererMode(envOrDefault("RENDERER_MODE", string(RendererModeChromeDP))),
		ChromeBinPath:   os.Getenv("CHROME_BIN_PATH"),
		RenderTimeout:   envOrDefaultDuration("RENDER_TIMEOUT", 90*time.Second),

		RenderSweepInterval: envOrDefaultDuration("RENDER_SWEEP_INTERVAL", time.Minute),
	}

	if cfg.Env == "production" {
		if cfg.DBPassword == "changeme" {
			return nil, fmt.Errorf("POSTGRES_PASSWORD must be set in production")
		}
	}

	if cfg.RendererMode != RendererModeChromeDP && cfg.RendererMode != RendererModeHTMLFallbackOnly {
		return nil, fmt.Errorf("RENDERER_MODE must be %q or %q, got %q",
			RendererModeChromeDP, RendererModeHTMLFallbackOnly, cfg.RendererMode)
	}

	return cfg, nil
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

// Addr returns the server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// ValkeyAddr returns the host:port address for the Valkey/Redis client.
func (c *Config) ValkeyAddr() string {
	return fmt.Sprintf("%s:%s", c.ValkeyHost, c.ValkeyPort)
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
