// Copyright 2026 The Releasefs Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration file loading for the releasefs
// command.
//
// Configuration is loaded from a single YAML file passed via the
// --config flag. There are no fallbacks or automatic discovery; flags
// given on the command line override file values. Credentials are
// never stored in the file directly — only a path to a password file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the mount settings for one releasefs instance.
type Config struct {
	// Mountpoint is the directory to mount the filesystem on.
	Mountpoint string `yaml:"mountpoint"`

	// Owner is the repository owner.
	Owner string `yaml:"owner"`

	// Repo is the repository name.
	Repo string `yaml:"repo"`

	// Username is the basic-auth username. Optional.
	Username string `yaml:"username"`

	// PasswordFile is a path to a file holding the basic-auth
	// password or token. Optional; required when Username is set and
	// no interactive terminal is available.
	PasswordFile string `yaml:"password_file"`

	// RefreshInterval enables periodic catalog refresh when
	// positive (e.g. "5m"). Zero disables refresh.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// AllowOther permits other users to access the mount.
	AllowOther bool `yaml:"allow_other"`

	// LogLevel is one of debug, info, warn, error. Defaults to info.
	LogLevel string `yaml:"log_level"`
}

// Duration is a time.Duration that unmarshals from YAML strings like
// "30s" or "5m" (yaml.v3 has no native duration support).
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &config, nil
}

// Validate checks field values that have a fixed domain. Required
// fields are not enforced here — flags may still supply them.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn, or error)", c.LogLevel)
	}
	if time.Duration(c.RefreshInterval) < 0 {
		return fmt.Errorf("refresh_interval must not be negative")
	}
	return nil
}
