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

package broker

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrBrokerClosed is returned by operations on a closed broker.
	ErrBrokerClosed = errors.New("broker is closed")

	// ErrSubscriptionClosed is returned when receiving on a cancelled
	// subscription.
	ErrSubscriptionClosed = errors.New("subscription is closed")

	// ErrNoCorrelation is returned by Respond when the envelope carries no
	// correlation ID.
	ErrNoCorrelation = errors.New("envelope has no correlation id")
)

// NotFoundError reports a lookup miss in the registry.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("actor %q is not registered", e.Name)
}

// DuplicateError reports an attempt to register a name twice.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("actor %q is already registered", e.Name)
}

// PoolEmptyError reports a pool with no registered members.
type PoolEmptyError struct {
	Pool string
}

func (e *PoolEmptyError) Error() string {
	return fmt.Sprintf("pool %q has no members", e.Pool)
}

// RequestTimeoutError reports a request that received no reply in time.
type RequestTimeoutError struct {
	CorrelationID uuid.UUID
	Timeout       time.Duration
}

func (e *RequestTimeoutError) Error() string {
	return fmt.Sprintf("request %s timed out after %v", e.CorrelationID, e.Timeout)
}

// IsNotFound reports whether err is a registry lookup miss.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return true
	}
	var pe *PoolEmptyError
	return errors.As(err, &pe)
}

// IsTimeout reports whether err is a request timeout.
func IsTimeout(err error) bool {
	var te *RequestTimeoutError
	return errors.As(err, &te)
}
