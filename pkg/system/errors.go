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
	"errors"
	"fmt"
	"time"

	"github.com/turtacn/actor-go/pkg/supervisor"
)

// ErrShuttingDown rejects operations while the system tears down.
var ErrShuttingDown = errors.New("actor system is shutting down")

// ActorLimitError reports that the configured actor cap is reached. It is
// transient: capacity frees up when an actor stops.
type ActorLimitError struct {
	Max int
}

func (e *ActorLimitError) Error() string {
	return fmt.Sprintf("actor limit reached (%d)", e.Max)
}

// SpawnError wraps a failure to start an actor.
type SpawnError struct {
	Name string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Name, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// ShutdownTimeoutError reports that graceful shutdown ran out of time and the
// remaining actors were forced down.
type ShutdownTimeoutError struct {
	Timeout   time.Duration
	Remaining int
}

func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("shutdown exceeded %v with %d actors remaining", e.Timeout, e.Remaining)
}

// IsTransient reports whether retrying the operation later can succeed
// without any intervention.
func IsTransient(err error) bool {
	var limit *ActorLimitError
	return errors.As(err, &limit)
}

// IsFatal reports errors that no retry will fix.
func IsFatal(err error) bool {
	if errors.Is(err, ErrShuttingDown) {
		return true
	}
	var timeout *ShutdownTimeoutError
	return errors.As(err, &timeout) || supervisor.IsFatal(err)
}

// IsRecoverable reports errors a caller can act on, typically by fixing the
// actor and spawning again.
func IsRecoverable(err error) bool {
	var spawn *SpawnError
	return errors.As(err, &spawn) && !IsFatal(err)
}
