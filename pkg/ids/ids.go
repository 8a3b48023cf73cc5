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

// Package ids provides the identifier and addressing primitives used
// throughout the runtime. Identifiers are 128-bit random UUIDs, so they are
// unique without any coordination between the goroutines that mint them.
package ids

import "github.com/google/uuid"

// ActorID uniquely identifies a live actor instance. Two instances created
// from the same definition (for example across restarts) have different IDs.
type ActorID struct {
	value uuid.UUID
}

// NewActorID returns a fresh random ActorID.
func NewActorID() ActorID {
	return ActorID{value: uuid.New()}
}

// String returns the canonical UUID text form.
func (id ActorID) String() string {
	return id.value.String()
}

// IsZero reports whether the ID is the zero value, i.e. was never minted.
func (id ActorID) IsZero() bool {
	return id.value == uuid.Nil
}

// MessageID uniquely identifies a message envelope.
type MessageID struct {
	value uuid.UUID
}

// NewMessageID returns a fresh random MessageID.
func NewMessageID() MessageID {
	return MessageID{value: uuid.New()}
}

// String returns the canonical UUID text form.
func (id MessageID) String() string {
	return id.value.String()
}

// IsZero reports whether the ID is the zero value.
func (id MessageID) IsZero() bool {
	return id.value == uuid.Nil
}
