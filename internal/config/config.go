// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package config handles application configuration loading. Values come from
// built-in defaults, then an optional reactvite.yaml file, then environment
// variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Modes accepted by Load.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "reactvite.yaml"

// Config holds all application configuration values.
type Config struct {
	// Server settings
	Host        string
	Port        string // dev server port
	PreviewPort string // preview server port (serves the build output)
	Env         string // "development" or "production"
	Open        bool   // open the browser when the dev server starts
	TrustProxy  bool   // key rate limits by X-Forwarded-For / X-Real-IP

	// Build settings
	BasePath  string // always has a leading and trailing slash
	Version   string
	OutDir    string
	AssetsDir string

	// ContactDelay is the fixed placeholder interval of a contact submission.
	ContactDelay time.Duration

	// Valkey (Redis-compatible). Empty host disables it.
	ValkeyHost     string
	ValkeyPort     string
	ValkeyPassword string

	// S3-compatible deploy target
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3Prefix    string
}

// fileConfig mirrors the YAML layout of reactvite.yaml.
type fileConfig struct {
	Server struct {
		Host       string `yaml:"host"`
		Port       string `yaml:"port"`
		Open       *bool  `yaml:"open"`
		TrustProxy bool   `yaml:"trustProxy"`
	} `yaml:"server"`
	Preview struct {
		Port string `yaml:"port"`
	} `yaml:"preview"`
	Build struct {
		Base      string `yaml:"base"`
		OutDir    string `yaml:"outDir"`
		AssetsDir string `yaml:"assetsDir"`
	} `yaml:"build"`
	Contact struct {
		Delay string `yaml:"delay"`
	} `yaml:"contact"`
	Deploy struct {
		Endpoint string `yaml:"endpoint"`
		Region   string `yaml:"region"`
		Bucket   string `yaml:"bucket"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"deploy"`
}

// ResolveMode picks the build mode: an explicit flag wins, then APP_ENV,
// then the command's own default.
func ResolveMode(flag, fallback string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("APP_ENV"); env != "" {
		return env
	}
	return fallback
}

// Load builds the configuration for the given mode. path names an optional
// YAML file; a missing file is not an error.
func Load(path, mode string) (*Config, error) {
	if mode != ModeDevelopment && mode != ModeProduction {
		return nil, fmt.Errorf("unknown mode %q (want %q or %q)", mode, ModeDevelopment, ModeProduction)
	}

	cfg := &Config{
		Host:         "0.0.0.0",
		Port:         "8080",
		PreviewPort:  "3000",
		Env:          mode,
		Open:         true,
		BasePath:     "/",
		OutDir:       "dist",
		AssetsDir:    "assets",
		ContactDelay: time.Second,
		ValkeyPort:   "6379",
		S3Region:     "us-east-1",
	}

	var basePath string
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if fc != nil {
			if err := cfg.apply(fc); err != nil {
				return nil, err
			}
			basePath = fc.Build.Base
		}
	}

	cfg.Host = envOrDefault("APP_HOST", cfg.Host)
	cfg.Port = envOrDefault("APP_PORT", cfg.Port)
	cfg.PreviewPort = envOrDefault("PREVIEW_PORT", cfg.PreviewPort)
	cfg.OutDir = envOrDefault("OUT_DIR", cfg.OutDir)
	if v := os.Getenv("TRUST_PROXY"); v != "" {
		trust, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TRUST_PROXY: %w", err)
		}
		cfg.TrustProxy = trust
	}
	cfg.Version = firstNonEmpty(os.Getenv("APP_VERSION"), os.Getenv("npm_package_version"), "dev")
	basePath = firstNonEmpty(os.Getenv("BASE_PATH"), os.Getenv("VITE_BASE_PATH"), basePath)

	if v := os.Getenv("CONTACT_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("CONTACT_DELAY: %w", err)
		}
		cfg.ContactDelay = d
	}

	cfg.ValkeyHost = envOrDefault("VALKEY_HOST", cfg.ValkeyHost)
	cfg.ValkeyPort = envOrDefault("VALKEY_PORT", cfg.ValkeyPort)
	cfg.ValkeyPassword = os.Getenv("VALKEY_PASSWORD")

	cfg.S3Endpoint = envOrDefault("S3_ENDPOINT", cfg.S3Endpoint)
	cfg.S3Region = envOrDefault("S3_REGION", cfg.S3Region)
	cfg.S3AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.S3SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.S3Bucket = envOrDefault("S3_BUCKET", cfg.S3Bucket)
	cfg.S3Prefix = envOrDefault("S3_PREFIX", cfg.S3Prefix)

	// Subpath deployments only apply to production builds.
	if cfg.Env == ModeProduction {
		cfg.BasePath = NormalizeBasePath(basePath)
	}

	if cfg.ContactDelay < 0 {
		return nil, fmt.Errorf("contact delay must not be negative, got %s", cfg.ContactDelay)
	}

	return cfg, nil
}

// readFile parses the YAML config file. Returns (nil, nil) when it does not exist.
func readFile(path string) (*fileConfig, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays non-empty file values onto cfg.
func (c *Config) apply(fc *fileConfig) error {
	c.Host = firstNonEmpty(fc.Server.Host, c.Host)
	c.Port = firstNonEmpty(fc.Server.Port, c.Port)
	if fc.Server.Open != nil {
		c.Open = *fc.Server.Open
	}
	c.TrustProxy = c.TrustProxy || fc.Server.TrustProxy
	c.PreviewPort = firstNonEmpty(fc.Preview.Port, c.PreviewPort)
	c.OutDir = firstNonEmpty(fc.Build.OutDir, c.OutDir)
	c.AssetsDir = firstNonEmpty(strings.Trim(fc.Build.AssetsDir, "/"), c.AssetsDir)
	c.S3Endpoint = firstNonEmpty(fc.Deploy.Endpoint, c.S3Endpoint)
	c.S3Region = firstNonEmpty(fc.Deploy.Region, c.S3Region)
	c.S3Bucket = firstNonEmpty(fc.Deploy.Bucket, c.S3Bucket)
	c.S3Prefix = firstNonEmpty(fc.Deploy.Prefix, c.S3Prefix)

	if fc.Contact.Delay != "" {
		d, err := time.ParseDuration(fc.Contact.Delay)
		if err != nil {
			return fmt.Errorf("contact.delay: %w", err)
		}
		c.ContactDelay = d
	}
	return nil
}

// NormalizeBasePath returns p with exactly one leading and one trailing
// slash. Empty input yields "/".
func NormalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return "/" + p + "/"
}

// Addr returns the dev server listen address (host:port).
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

// PreviewAddr returns the preview server listen address.
func (c *Config) PreviewAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.PreviewPort)
}

// IsDev returns true if the application is running in development mode.
func (c *Config) IsDev() bool {
	return c.Env == ModeDevelopment
}

// Sourcemap reports whether bundled chunks ship with source maps.
func (c *Config) Sourcemap() bool {
	return c.IsDev()
}

// ComponentTagging reports whether rendered components carry data-component
// attributes naming the template that produced them.
func (c *Config) ComponentTagging() bool {
	return c.IsDev()
}

// ValkeyEnabled reports whether a Valkey host is configured.
func (c *Config) ValkeyEnabled() bool {
	return c.ValkeyHost != ""
}

// envOrDefault reads an environment variable, returning a fallback if unset or empty.
func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
