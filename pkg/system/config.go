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

package system

import (
	"fmt"
	"time"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultMailboxCapacity = 1000
	DefaultSpawnTimeout    = 5 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)

// Config bounds the actor system.
type Config struct {
	// DefaultMailboxCapacity sizes the bounded mailbox of actors spawned
	// without an explicit capacity.
	DefaultMailboxCapacity int
	// SpawnTimeout bounds PreStart. A slow start is a failed start.
	SpawnTimeout time.Duration
	// ShutdownTimeout bounds graceful shutdown before the rest is forced.
	ShutdownTimeout time.Duration
	// MaxActors caps concurrent actors. Zero means unlimited.
	MaxActors int
}

// DefaultConfig returns the standard limits.
func DefaultConfig() Config {
	return Config{
		DefaultMailboxCapacity: DefaultMailboxCapacity,
		SpawnTimeout:           DefaultSpawnTimeout,
		ShutdownTimeout:        DefaultShutdownTimeout,
	}
}

// Validate rejects negative limits.
func (c Config) Validate() error {
	if c.DefaultMailboxCapacity < 0 {
		return fmt.Errorf("default mailbox capacity must not be negative, got %d", c.DefaultMailboxCapacity)
	}
	if c.SpawnTimeout < 0 {
		return fmt.Errorf("spawn timeout must not be negative, got %v", c.SpawnTimeout)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative, got %v", c.ShutdownTimeout)
	}
	if c.MaxActors < 0 {
		return fmt.Errorf("max actors must not be negative, got %d", c.MaxActors)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.DefaultMailboxCapacity <= 0 {
		c.DefaultMailboxCapacity = DefaultMailboxCapacity
	}
	if c.SpawnTimeout <= 0 {
		c.SpawnTimeout = DefaultSpawnTimeout
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = DefaultShutdownTimeout
	}
	return c
}
