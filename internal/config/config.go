// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-elev.
//
// go-elev is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package config loads the elev tool settings. These are the
// mechanics around the core (file locations, logging, the auth
// helper); the security policy itself lives in the policy file and
// is parsed by pkg/policy.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultConfigPath = "/etc/elev/elev.yaml"
	DefaultPolicyPath = "/etc/elev.conf"
	DefaultSessionDir = "/run/elev"
	DefaultAuthHelper = "/usr/libexec/elev-auth"
)

// Config is the complete tool configuration.
type Config struct {
	// PolicyFile is the policy file location.
	PolicyFile string `yaml:"policy_file"`

	// SessionDir is where per-user session records live.
	SessionDir string `yaml:"session_dir"`

	// AuthHelper is the external credential-verification helper.
	AuthHelper string `yaml:"auth_helper"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Syslog mirrors log output to the system log (auth facility).
	Syslog bool `yaml:"syslog"`

	// Tag is the syslog program tag.
	Tag string `yaml:"tag"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PolicyFile: DefaultPolicyPath,
		SessionDir: DefaultSessionDir,
		AuthHelper: DefaultAuthHelper,
		Logging: LoggingConfig{
			Syslog: true,
			Tag:    "elev",
		},
	}
}

// Load reads the configuration at path, falling back to the defaults
// for any unset field. A missing file at the default path yields the
// defaults; an explicitly requested file must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && path == DefaultConfigPath {
			return cfg, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills fields the file left empty.
func (c *Config) applyDefaults() {
	if c.PolicyFile == "" {
		c.PolicyFile = DefaultPolicyPath
	}
	if c.SessionDir == "" {
		c.SessionDir = DefaultSessionDir
	}
	if c.AuthHelper == "" {
		c.AuthHelper = DefaultAuthHelper
	}
	if c.Logging.Tag == "" {
		c.Logging.Tag = "elev"
	}
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	for name, path := range map[string]string{
		"policy_file": c.PolicyFile,
		"session_dir": c.SessionDir,
		"auth_helper": c.AuthHelper,
	} {
		if path == "" || path[0] != '/' {
			return fmt.Errorf("config: %s must be an absolute path, got %q", name, path)
		}
	}
	return nil
}
