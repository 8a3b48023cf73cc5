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

// package supervisor provides an OTP-style supervision engine for managing
// the lifecycle of concurrent children: restart policies, shutdown policies,
// restart strategies, rate limiting with exponential backoff, and periodic
// health checking.
package supervisor

import "time"

// RestartPolicy defines the restart behavior for a supervised child.
type RestartPolicy int

const (
	// RestartPermanent indicates that the child should always be restarted.
	RestartPermanent RestartPolicy = iota
	// RestartTransient indicates that the child should be restarted only if
	// it terminates abnormally (i.e., with an error or a panic).
	RestartTransient
	// RestartTemporary indicates that the child should never be restarted.
	RestartTemporary
)

// ShouldRestart reports whether a child with this policy is restarted after
// an exit. wasError is true for abnormal exits.
func (p RestartPolicy) ShouldRestart(wasError bool) bool {
	switch p {
	case RestartPermanent:
		return true
	case RestartTransient:
		return wasError
	default: // RestartTemporary
		return false
	}
}

// String returns the policy name for logs.
func (p RestartPolicy) String() string {
	switch p {
	case RestartPermanent:
		return "permanent"
	case RestartTransient:
		return "transient"
	case RestartTemporary:
		return "temporary"
	default:
		return "unknown"
	}
}

// Strategy defines how a child failure propagates to its siblings.
type Strategy int

const (
	// OneForOne restarts only the failed child.
	OneForOne Strategy = iota
	// OneForAll stops and restarts every child when one fails.
	OneForAll
	// RestForOne restarts the failed child and every child started after it.
	RestForOne
)

// String returns the strategy name for logs.
func (s Strategy) String() string {
	switch s {
	case OneForOne:
		return "one_for_one"
	case OneForAll:
		return "one_for_all"
	case RestForOne:
		return "rest_for_one"
	default:
		return "unknown"
	}
}

type shutdownKind int

const (
	shutdownGraceful shutdownKind = iota
	shutdownImmediate
	shutdownInfinity
)

// ShutdownPolicy controls how much grace a child gets when stopped.
type ShutdownPolicy struct {
	kind  shutdownKind
	grace time.Duration
}

// ShutdownGraceful waits up to d for the child to stop; exceeding the grace
// is a failure.
func ShutdownGraceful(d time.Duration) ShutdownPolicy {
	return ShutdownPolicy{kind: shutdownGraceful, grace: d}
}

// ShutdownImmediate stops the child without waiting.
func ShutdownImmediate() ShutdownPolicy {
	return ShutdownPolicy{kind: shutdownImmediate}
}

// ShutdownInfinity waits for the child as long as it takes.
func ShutdownInfinity() ShutdownPolicy {
	return ShutdownPolicy{kind: shutdownInfinity}
}

// Timeout returns the grace period and whether one exists. Graceful yields
// (d, true), Immediate yields (0, true), Infinity yields (0, false).
func (p ShutdownPolicy) Timeout() (time.Duration, bool) {
	switch p.kind {
	case shutdownGraceful:
		return p.grace, true
	case shutdownImmediate:
		return 0, true
	default:
		return 0, false
	}
}

// IsImmediate reports whether the policy skips the grace period entirely.
func (p ShutdownPolicy) IsImmediate() bool {
	return p.kind == shutdownImmediate
}

// String returns the policy for logs.
func (p ShutdownPolicy) String() string {
	switch p.kind {
	case shutdownGraceful:
		return "graceful(" + p.grace.String() + ")"
	case shutdownImmediate:
		return "immediate"
	default:
		return "infinity"
	}
}
