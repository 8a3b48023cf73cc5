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

package actor

import (
	"sync"
	"time"
)

// State is where an actor is in its life.
type State int

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
	StateFailed
)

// String returns the state name for logs.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether no further transitions happen.
func (s State) IsTerminal() bool {
	return s == StateStopped || s == StateFailed
}

// Lifecycle tracks an actor's state transitions.
type Lifecycle struct {
	mu        sync.RWMutex
	state     State
	changedAt time.Time
}

// NewLifecycle starts in StateCreated.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateCreated, changedAt: time.Now()}
}

// TransitionTo moves to state and timestamps the change.
func (l *Lifecycle) TransitionTo(state State) {
	l.mu.Lock()
	l.state = state
	l.changedAt = time.Now()
	l.mu.Unlock()
}

// State returns the current state.
func (l *Lifecycle) State() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// ChangedAt returns when the last transition happened.
func (l *Lifecycle) ChangedAt() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.changedAt
}

// IsRunning reports whether the actor is processing messages.
func (l *Lifecycle) IsRunning() bool {
	return l.State() == StateRunning
}
