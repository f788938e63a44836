// Package config holds node configuration: role, quorum threshold,
// follower addresses, and replication transport tuning. Values come from
// defaults, an optional YAML file, and environment variables, in that
// order of precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/AlexandraB-C/PR-LAB-4/internal/role"
)

// Config holds the node configuration.
type Config struct {
	Role         string   `yaml:"role"`
	ListenAddr   string   `yaml:"listen_addr"`
	WriteQuorum  int      `yaml:"write_quorum"`
	FollowerURLs []string `yaml:"follower_urls"`

	// Simulated network delay bounds applied before each replication send.
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`

	// Per-follower replication call timeout and fan-out pool bound.
	ReplicationTimeoutMs      int `yaml:"replication_timeout_ms"`
	MaxConcurrentReplications int `yaml:"max_concurrent_replications"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Role:                      string(role.Follower),
		ListenAddr:                ":8080",
		WriteQuorum:               3,
		MinDelayMs:                50,
		MaxDelayMs:                1000,
		ReplicationTimeoutMs:      10_000,
		MaxConcurrentReplications: 10,
	}
}

// Load builds the configuration: defaults, then the YAML file at path if
// one is given and exists, then environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Missing file falls through to env/defaults.
		case err != nil:
			return cfg, fmt.Errorf("read config file %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config file %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyEnv overrides fields from the environment: ROLE, PORT, WRITE_QUORUM,
// FOLLOWER_URLS, MIN_DELAY_MS, MAX_DELAY_MS.
func (c *Config) applyEnv() error {
	if v := os.Getenv("ROLE"); v != "" {
		c.Role = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.ListenAddr = ":" + v
	}
	if v := os.Getenv("FOLLOWER_URLS"); v != "" {
		urls, err := ParseFollowerURLs(v)
		if err != nil {
			return err
		}
		c.FollowerURLs = urls
	}

	intVars := []struct {
		name string
		dst  *int
	}{
		{"WRITE_QUORUM", &c.WriteQuorum},
		{"MIN_DELAY_MS", &c.MinDelayMs},
		{"MAX_DELAY_MS", &c.MaxDelayMs},
	}
	for _, iv := range intVars {
		v := os.Getenv(iv.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", iv.name, v, err)
		}
		*iv.dst = n
	}

	return nil
}

// ParseFollowerURLs parses a comma-separated list of follower base URLs,
// e.g. "http://follower1:8080,http://follower2:8080". Empty items are
// skipped; each remaining item must be an absolute http(s) URL.
func ParseFollowerURLs(s string) ([]string, error) {
	parts := strings.Split(s, ",")
	urls := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		u, err := url.Parse(part)
		if err != nil {
			return nil, fmt.Errorf("invalid follower URL %q: %w", part, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, fmt.Errorf("invalid follower URL %q (expected absolute http(s) URL)", part)
		}

		urls = append(urls, strings.TrimRight(part, "/"))
	}

	return urls, nil
}

// Validate checks cross-field constraints.
func (c Config) Validate() error {
	r, err := role.Parse(c.Role)
	if err != nil {
		return err
	}

	if r == role.Leader {
		if len(c.FollowerURLs) == 0 {
			return fmt.Errorf("leader requires at least one follower URL")
		}
		if c.WriteQuorum < 1 || c.WriteQuorum > len(c.FollowerURLs) {
			return fmt.Errorf("write quorum %d out of range [1, %d]", c.WriteQuorum, len(c.FollowerURLs))
		}
	}

	if c.MinDelayMs < 0 || c.MaxDelayMs < 0 {
		return fmt.Errorf("delay bounds must be non-negative (min=%d, max=%d)", c.MinDelayMs, c.MaxDelayMs)
	}
	if c.MinDelayMs > c.MaxDelayMs {
		return fmt.Errorf("min delay %dms exceeds max delay %dms", c.MinDelayMs, c.MaxDelayMs)
	}
	if c.ReplicationTimeoutMs <= 0 {
		return fmt.Errorf("replication timeout must be positive, got %dms", c.ReplicationTimeoutMs)
	}

	return nil
}

// NodeRole returns the parsed role. Call Validate first.
func (c Config) NodeRole() role.Role {
	return role.Role(c.Role)
}

// ReplicationTimeout returns the per-follower call timeout.
func (c Config) ReplicationTimeout() time.Duration {
	return time.Duration(c.ReplicationTimeoutMs) * time.Millisecond
}

// MinDelay returns the lower simulated delay bound.
func (c Config) MinDelay() time.Duration {
	return time.Duration(c.MinDelayMs) * time.Millisecond
}

// MaxDelay returns the upper simulated delay bound.
func (c Config) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelayMs) * time.Millisecond
}
