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

// Package message defines the message contract and the envelope that wraps
// every payload traveling through mailboxes and the broker. Payloads stay
// plain Go values; no serialization happens inside the process.
package message

// Priority orders messages from least to most urgent. Higher values compare
// greater, so priorities can be compared with the usual operators.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
	PriorityCritical
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Message is implemented by every payload type sent between actors.
// MessageType names the payload for routing and diagnostics; Priority
// provides the default urgency, which an envelope may override.
type Message interface {
	MessageType() string
	Priority() Priority
}
