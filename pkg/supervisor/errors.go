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
	"errors"
	"fmt"
	"time"
)

var (
	// ErrShuttingDown rejects operations on a supervisor that is tearing
	// down.
	ErrShuttingDown = errors.New("supervisor is shutting down")

	// ErrHealthMonitoringDisabled is returned by health operations when no
	// health configuration was enabled.
	ErrHealthMonitoringDisabled = errors.New("health monitoring is not enabled")

	// ErrHealthMonitorRunning is returned when starting an already-running
	// health monitor.
	ErrHealthMonitorRunning = errors.New("health monitor is already running")
)

// NotFoundError reports an unknown child ID.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("child %q not found", e.ID)
}

// DuplicateError reports a child ID already in use.
type DuplicateError struct {
	ID string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("child %q already exists", e.ID)
}

// StartError reports a failed child start.
type StartError struct {
	ID  string
	Err error
}

func (e *StartError) Error() string {
	return fmt.Sprintf("child %q failed to start: %v", e.ID, e.Err)
}

func (e *StartError) Unwrap() error {
	return e.Err
}

// StopError reports a failed child stop.
type StopError struct {
	ID  string
	Err error
}

func (e *StopError) Error() string {
	return fmt.Sprintf("child %q failed to stop: %v", e.ID, e.Err)
}

func (e *StopError) Unwrap() error {
	return e.Err
}

// TimeoutError reports a lifecycle operation that exceeded its bound. The
// operation is abandoned, not interrupted; the child is marked failed.
type TimeoutError struct {
	ID      string
	Op      string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("child %q: %s did not complete within %v", e.ID, e.Op, e.Timeout)
}

// RestartLimitError reports a child that used up its restart budget. The
// child is left in the failed state and is not restarted again.
type RestartLimitError struct {
	ID          string
	MaxRestarts int
	Window      time.Duration
}

func (e *RestartLimitError) Error() string {
	return fmt.Sprintf("child %q exceeded %d restarts in %v", e.ID, e.MaxRestarts, e.Window)
}

// BatchError reports a strategy batch that could not be completed. The batch
// is aborted at the first failing sibling.
type BatchError struct {
	Strategy Strategy
	FailedID string
	Err      error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%s batch aborted at child %q: %v", e.Strategy, e.FailedID, e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an unknown-child error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsFatal reports whether err ends supervision of the child for good.
func IsFatal(err error) bool {
	var rl *RestartLimitError
	if errors.As(err, &rl) {
		return true
	}
	var be *BatchError
	return errors.As(err, &be)
}

// IsRetryable reports whether the operation may succeed if tried again.
func IsRetryable(err error) bool {
	if err == nil || IsFatal(err) {
		return false
	}
	var se *StartError
	if errors.As(err, &se) {
		return true
	}
	var pe *StopError
	if errors.As(err, &pe) {
		return true
	}
	var te *TimeoutError
	return errors.As(err, &te)
}
