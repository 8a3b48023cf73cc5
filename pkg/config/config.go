// Copyright 2025 The actor-go Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config provides file-based configuration for the actor runtime:
// system limits, supervisor restart policy, health checking, and the metrics
// listener.
package config

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/turtacn/actor-go/pkg/supervisor"
	"github.com/turtacn/actor-go/pkg/system"
)

// SystemConfig bounds the actor system. Durations are strings in Go duration
// syntax ("5s", "100ms").
type SystemConfig struct {
	MailboxCapacity int    `yaml:"mailbox_capacity" json:"mailbox_capacity"`
	SpawnTimeout    string `yaml:"spawn_timeout" json:"spawn_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxActors       int    `yaml:"max_actors" json:"max_actors"`
}

// SupervisorConfig sets the restart strategy and rate limits.
type SupervisorConfig struct {
	Strategy      string `yaml:"strategy" json:"strategy"`
	MaxRestarts   int    `yaml:"max_restarts" json:"max_restarts"`
	RestartWindow string `yaml:"restart_window" json:"restart_window"`
	BaseDelay     string `yaml:"base_delay" json:"base_delay"`
	MaxDelay      string `yaml:"max_delay" json:"max_delay"`
}

// HealthConfig sets the periodic health checking of supervised children.
type HealthConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	CheckInterval    string `yaml:"check_interval" json:"check_interval"`
	CheckTimeout     string `yaml:"check_timeout" json:"check_timeout"`
	FailureThreshold int    `yaml:"failure_threshold" json:"failure_threshold"`
}

// MetricsConfig sets the Prometheus listener.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Port    string `yaml:"port" json:"port"`
}

// RuntimeConfig is the runtime section of the configuration.
type RuntimeConfig struct {
	NodeID     string           `yaml:"node_id" json:"node_id"`
	System     SystemConfig     `yaml:"system" json:"system"`
	Supervisor SupervisorConfig `yaml:"supervisor" json:"supervisor"`
	Health     HealthConfig     `yaml:"health" json:"health"`
	Metrics    MetricsConfig    `yaml:"metrics" json:"metrics"`
}

// Config holds the complete configuration.
type Config struct {
	Runtime RuntimeConfig `yaml:"runtime" json:"runtime"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runtime: RuntimeConfig{
			NodeID: "actor-go-node",
			System: SystemConfig{
				MailboxCapacity: 1000,
				SpawnTimeout:    "5s",
				ShutdownTimeout: "30s",
				MaxActors:       0,
			},
			Supervisor: SupervisorConfig{
				Strategy:      "one_for_one",
				MaxRestarts:   5,
				RestartWindow: "60s",
				BaseDelay:     "100ms",
				MaxDelay:      "60s",
			},
			Health: HealthConfig{
				Enabled:          false,
				CheckInterval:    "30s",
				CheckTimeout:     "5s",
				FailureThreshold: 3,
			},
			Metrics: MetricsConfig{
				Enabled: true,
				Port:    ":8082",
			},
		},
	}
}

// LoadConfig loads configuration from a file. An empty path returns the
// defaults.
func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		log.Println("[INFO] No config file specified, using default configuration")
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	config := DefaultConfig()
	ext := strings.ToLower(filepath.Ext(configPath))

	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	case ".json":
		err = json.Unmarshal(data, config)
	default:
		return nil, fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	log.Printf("[INFO] Configuration loaded from %s", configPath)
	return config, nil
}

// SaveConfig saves configuration to a file.
func SaveConfig(config *Config, configPath string) error {
	var data []byte
	var err error

	ext := strings.ToLower(filepath.Ext(configPath))
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	case ".json":
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		return fmt.Errorf("unsupported config file format: %s (supported: .yaml, .yml, .json)", ext)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	err = os.WriteFile(configPath, data, 0644)
	if err != nil {
		return fmt.Errorf("failed to write config file %s: %w", configPath, err)
	}

	log.Printf("[INFO] Configuration saved to %s", configPath)
	return nil
}

// Validate checks every section for parseable durations and sane limits.
func (c *Config) Validate() error {
	if c.Runtime.NodeID == "" {
		return fmt.Errorf("node_id cannot be empty")
	}

	if c.Runtime.System.MailboxCapacity < 0 {
		return fmt.Errorf("system: mailbox_capacity cannot be negative")
	}
	if c.Runtime.System.MaxActors < 0 {
		return fmt.Errorf("system: max_actors cannot be negative")
	}
	durations := map[string]string{
		"system.spawn_timeout":      c.Runtime.System.SpawnTimeout,
		"system.shutdown_timeout":   c.Runtime.System.ShutdownTimeout,
		"supervisor.restart_window": c.Runtime.Supervisor.RestartWindow,
		"supervisor.base_delay":     c.Runtime.Supervisor.BaseDelay,
		"supervisor.max_delay":      c.Runtime.Supervisor.MaxDelay,
		"health.check_interval":     c.Runtime.Health.CheckInterval,
		"health.check_timeout":      c.Runtime.Health.CheckTimeout,
	}
	for field, value := range durations {
		if _, err := parseDuration(value); err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
	}

	if _, err := parseStrategy(c.Runtime.Supervisor.Strategy); err != nil {
		return err
	}
	if c.Runtime.Supervisor.MaxRestarts < 0 {
		return fmt.Errorf("supervisor: max_restarts cannot be negative")
	}
	if c.Runtime.Health.FailureThreshold < 0 {
		return fmt.Errorf("health: failure_threshold cannot be negative")
	}

	if c.Runtime.Metrics.Enabled && c.Runtime.Metrics.Port == "" {
		return fmt.Errorf("metrics: port cannot be empty when metrics are enabled")
	}
	return nil
}

// SystemConfig converts the system section to runtime limits.
func (c *Config) SystemConfig() (system.Config, error) {
	spawn, err := parseDuration(c.Runtime.System.SpawnTimeout)
	if err != nil {
		return system.Config{}, fmt.Errorf("system.spawn_timeout: %w", err)
	}
	shutdown, err := parseDuration(c.Runtime.System.ShutdownTimeout)
	if err != nil {
		return system.Config{}, fmt.Errorf("system.shutdown_timeout: %w", err)
	}
	return system.Config{
		DefaultMailboxCapacity: c.Runtime.System.MailboxCapacity,
		SpawnTimeout:           spawn,
		ShutdownTimeout:        shutdown,
		MaxActors:              c.Runtime.System.MaxActors,
	}, nil
}

// SupervisorOptions converts the supervisor section to supervisor options.
func (c *Config) SupervisorOptions() (supervisor.Options, error) {
	strategy, err := parseStrategy(c.Runtime.Supervisor.Strategy)
	if err != nil {
		return supervisor.Options{}, err
	}
	window, err := parseDuration(c.Runtime.Supervisor.RestartWindow)
	if err != nil {
		return supervisor.Options{}, fmt.Errorf("supervisor.restart_window: %w", err)
	}
	base, err := parseDuration(c.Runtime.Supervisor.BaseDelay)
	if err != nil {
		return supervisor.Options{}, fmt.Errorf("supervisor.base_delay: %w", err)
	}
	max, err := parseDuration(c.Runtime.Supervisor.MaxDelay)
	if err != nil {
		return supervisor.Options{}, fmt.Errorf("supervisor.max_delay: %w", err)
	}
	return supervisor.Options{
		Strategy:      strategy,
		MaxRestarts:   c.Runtime.Supervisor.MaxRestarts,
		RestartWindow: window,
		BaseDelay:     base,
		MaxDelay:      max,
	}, nil
}

// HealthConfig converts the health section to the supervisor's health
// monitoring settings.
func (c *Config) HealthConfig() (supervisor.HealthConfig, error) {
	interval, err := parseDuration(c.Runtime.Health.CheckInterval)
	if err != nil {
		return supervisor.HealthConfig{}, fmt.Errorf("health.check_interval: %w", err)
	}
	timeout, err := parseDuration(c.Runtime.Health.CheckTimeout)
	if err != nil {
		return supervisor.HealthConfig{}, fmt.Errorf("health.check_timeout: %w", err)
	}
	return supervisor.HealthConfig{
		CheckInterval:    interval,
		CheckTimeout:     timeout,
		FailureThreshold: c.Runtime.Health.FailureThreshold,
	}, nil
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration %q cannot be negative", s)
	}
	return d, nil
}

func parseStrategy(s string) (supervisor.Strategy, error) {
	switch s {
	case "", "one_for_one":
		return supervisor.OneForOne, nil
	case "one_for_all":
		return supervisor.OneForAll, nil
	case "rest_for_one":
		return supervisor.RestForOne, nil
	default:
		return supervisor.OneForOne, fmt.Errorf("unsupported supervisor strategy: %s (supported: one_for_one, one_for_all, rest_for_one)", s)
	}
}
