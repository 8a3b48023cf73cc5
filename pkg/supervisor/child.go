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

package supervisor

import (
	"context"
	"errors"
	"time"
)

// Child is the contract a supervised process implements. Start must return
// once the child is running (spawn your goroutines, then return); Stop must
// release resources within the granted grace period.
type Child interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context, timeout time.Duration) error
	HealthCheck(ctx context.Context) ChildHealth
}

// ChildSpec describes how to create and manage one child.
type ChildSpec struct {
	// ID names the child within its supervisor. Must be unique.
	ID string

	// Factory creates a fresh child instance. It is called on the initial
	// start and again on every restart, so it must be safe to invoke
	// repeatedly.
	Factory func() Child

	// Restart decides whether the child comes back after an exit.
	Restart RestartPolicy

	// Shutdown decides how much grace Stop gets.
	Shutdown ShutdownPolicy

	// StartTimeout bounds Start. Zero means no limit. Exceeding it is a
	// start failure; the start attempt is abandoned, not interrupted.
	StartTimeout time.Duration

	// ShutdownTimeout bounds Stop when the shutdown policy is Infinity.
	// Zero means wait forever.
	ShutdownTimeout time.Duration
}

// Validate rejects specs the supervisor cannot run.
func (s ChildSpec) Validate() error {
	if s.ID == "" {
		return errors.New("child spec: id must not be empty")
	}
	if s.Factory == nil {
		return errors.New("child spec: factory must not be nil")
	}
	return nil
}

// ChildState tracks where a child is in its lifecycle.
type ChildState int

const (
	// StateCreating is the initial state before the first start attempt.
	StateCreating ChildState = iota
	// StateStarting means Start is in progress.
	StateStarting
	// StateRunning means the child started successfully.
	StateRunning
	// StateRestarting means the restart pipeline is engaged.
	StateRestarting
	// StateStopping means Stop is in progress.
	StateStopping
	// StateTerminated is terminal: the child exited cleanly.
	StateTerminated
	// StateFailed is terminal: the child exceeded its restart budget or
	// could not be stopped.
	StateFailed
)

// IsTerminal reports whether no further transitions happen.
func (s ChildState) IsTerminal() bool {
	return s == StateTerminated || s == StateFailed
}

// IsRunning reports whether the child is live.
func (s ChildState) IsRunning() bool {
	return s == StateRunning
}

// String returns the state name for logs.
func (s ChildState) String() string {
	switch s {
	case StateCreating:
		return "creating"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateRestarting:
		return "restarting"
	case StateStopping:
		return "stopping"
	case StateTerminated:
		return "terminated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// HealthStatus classifies a health check result.
type HealthStatus int

const (
	HealthHealthy HealthStatus = iota
	HealthDegraded
	HealthFailed
)

// ChildHealth is the outcome of one health check. Degraded and Failed carry
// a reason.
type ChildHealth struct {
	Status HealthStatus
	Reason string
}

// Healthy reports a passing check.
func Healthy() ChildHealth {
	return ChildHealth{Status: HealthHealthy}
}

// Degraded reports a child that works but is impaired. Degraded results are
// recorded but do not count toward the failure threshold.
func Degraded(reason string) ChildHealth {
	return ChildHealth{Status: HealthDegraded, Reason: reason}
}

// Failed reports a failing check.
func Failed(reason string) ChildHealth {
	return ChildHealth{Status: HealthFailed, Reason: reason}
}

// IsHealthy reports a passing check.
func (h ChildHealth) IsHealthy() bool {
	return h.Status == HealthHealthy
}

// IsFailed reports a failing check.
func (h ChildHealth) IsFailed() bool {
	return h.Status == HealthFailed
}

// String renders the health for logs.
func (h ChildHealth) String() string {
	switch h.Status {
	case HealthHealthy:
		return "healthy"
	case HealthDegraded:
		return "degraded: " + h.Reason
	default:
		return "failed: " + h.Reason
	}
}
