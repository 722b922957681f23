// Package config handles YAML configuration loading, environment variable
// expansion, and structural validation for futurebuddy.
package config

import "gopkg.in/yaml.v3"

// Config is the top-level configuration structure.
type Config struct {
	// Version is the config format version. Currently only "1" is supported.
	Version string `yaml:"version"`

	// DataDir is the root directory for persistent data (database, audit
	// log). Empty means the platform default under the user home directory.
	DataDir string `yaml:"data_dir,omitempty"`

	// Security holds audit and rate limit settings.
	Security SecurityConfig `yaml:"security,omitempty"`

	// Scan controls periodic tool rescanning.
	Scan ScanConfig `yaml:"scan,omitempty"`

	// Modules maps module IDs to their raw YAML configuration.
	// Keys must match registered module IDs (e.g. "gateway.http").
	Modules map[string]yaml.Node `yaml:"modules"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// RateLimits caps per-minute operation rates. Zero values use defaults.
	RateLimits RateLimitConfig `yaml:"rate_limits,omitempty"`

	// RedactLiterals lists exact strings to strip from logs and the audit
	// trail, on top of the built-in secret patterns.
	RedactLiterals []string `yaml:"redact_literals,omitempty"`
}

// RateLimitConfig mirrors the limiter's per-minute buckets.
type RateLimitConfig struct {
	ExecutionsPerMin int `yaml:"executions_per_min,omitempty"`
	ApprovalsPerMin  int `yaml:"approvals_per_min,omitempty"`
	AuthPerMin       int `yaml:"auth_per_min,omitempty"`
}

// ScanConfig controls the background tool scan job.
type ScanConfig struct {
	// Schedule is a 5-field cron expression. Empty means every 30 minutes.
	Schedule string `yaml:"schedule,omitempty"`

	// Disabled turns off periodic rescanning; a scan still runs at startup.
	Disabled bool `yaml:"disabled,omitempty"`
}
