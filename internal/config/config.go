// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Kinship Contributors

// Package config loads and validates the kinship configuration from file,
// environment (prefix KINSHIP_), and defaults.
package config

import (
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	kinerr "github.com/kinship-dev/kinship/pkg/errors"
)

// Config is the top-level kinship configuration.
type Config struct {
	Networking NetworkingConfig `mapstructure:"networking"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Query      QueryConfig      `mapstructure:"query"`
	Auth       AuthConfig       `mapstructure:"auth"`
}

// NetworkingConfig controls how the API server listens for connections.
type NetworkingConfig struct {
	Listen      string   `mapstructure:"listen"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// StorageConfig selects the storage backend and its location. Seed names a
// YAML tree file imported into an empty store on startup.
type StorageConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Seed    string `mapstructure:"seed"`
}

// QueryConfig sets query defaults.
type QueryConfig struct {
	Locale string `mapstructure:"locale"`
}

// AuthConfig controls token issuance. An empty secret disables
// authentication.
type AuthConfig struct {
	Secret     string            `mapstructure:"secret"`
	AccessTTL  time.Duration     `mapstructure:"access_ttl"`
	RefreshTTL time.Duration     `mapstructure:"refresh_ttl"`
	Users      map[string]string `mapstructure:"users"`
}

// Load reads configuration from the given path (or defaults) with
// environment variable overrides (prefix KINSHIP_).
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("networking.listen", "127.0.0.1:5555")
	v.SetDefault("storage.backend", "sqlite")
	v.SetDefault("storage.path", "kinship.db")
	v.SetDefault("query.locale", "en")
	v.SetDefault("auth.access_ttl", "15m")
	v.SetDefault("auth.refresh_ttl", "168h")

	// Environment
	v.SetEnvPrefix("KINSHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// File
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, kinerr.Wrapf(err, kinerr.CodeConfigLoadReadFailure, "reading config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, kinerr.Wrap(err, kinerr.CodeConfigLoadReadFailure, "unmarshalling config")
	}

	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, kinerr.Wrap(errors.Join(errs...), kinerr.CodeConfigValidateInvalidValue, "validating config")
	}

	return &cfg, nil
}

// Validate checks the configuration for logical errors. It returns a slice
// of all validation errors found, collecting all issues rather than stopping
// at the first one.
func (c *Config) Validate() []error {
	var errs []error

	errs = append(errs, c.validateNetworking()...)
	errs = append(errs, c.validateStorage()...)
	errs = append(errs, c.validateAuth()...)

	return errs
}

func (c *Config) validateNetworking() []error {
	var errs []error

	if c.Networking.Listen == "" {
		errs = append(errs, kinerr.New(kinerr.CodeConfigValidateInvalidValue,
			"config: networking.listen must not be empty"))
		return errs
	}

	_, portStr, err := net.SplitHostPort(c.Networking.Listen)
	if err != nil {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: networking.listen must be a valid host:port address, got %q", c.Networking.Listen))
		return errs
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be a number, got %q", portStr))
	} else if port < 0 || port > 65535 {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: networking.listen port must be between 0 and 65535, got %d", port))
	}

	return errs
}

func (c *Config) validateStorage() []error {
	var errs []error

	validBackends := map[string]bool{"sqlite": true, "memory": true}
	if !validBackends[c.Storage.Backend] {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: storage.backend must be one of [sqlite, memory], got %q", c.Storage.Backend))
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		errs = append(errs, kinerr.New(kinerr.CodeConfigValidateInvalidValue,
			"config: storage.path is required for the sqlite backend"))
	}

	return errs
}

func (c *Config) validateAuth() []error {
	var errs []error

	if c.Auth.Secret == "" {
		return errs
	}
	if len(c.Auth.Users) == 0 {
		errs = append(errs, kinerr.New(kinerr.CodeConfigValidateInvalidValue,
			"config: auth.users must name at least one user when auth.secret is set"))
	}
	if c.Auth.AccessTTL <= 0 {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: auth.access_ttl must be positive, got %s", c.Auth.AccessTTL))
	}
	if c.Auth.RefreshTTL <= 0 {
		errs = append(errs, kinerr.Errorf(kinerr.CodeConfigValidateInvalidValue,
			"config: auth.refresh_ttl must be positive, got %s", c.Auth.RefreshTTL))
	}

	return errs
}
