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

package mailbox

import "github.com/turtacn/actor-go/pkg/message"

// BackpressureStrategy decides what Send does when a bounded mailbox is full.
// The strategy is evaluated at send time; it never affects receives.
type BackpressureStrategy int

const (
	// BackpressureError rejects the send with a FullError. This is the
	// default: the sender finds out immediately and decides what to do.
	BackpressureError BackpressureStrategy = iota

	// BackpressureBlock makes Send wait for space or context cancellation.
	BackpressureBlock

	// BackpressureDrop silently discards the new message. The drop is
	// counted in the mailbox metrics and Send reports success.
	BackpressureDrop
)

// String returns the strategy name for logs.
func (s BackpressureStrategy) String() string {
	switch s {
	case BackpressureError:
		return "error"
	case BackpressureBlock:
		return "block"
	case BackpressureDrop:
		return "drop"
	default:
		return "unknown"
	}
}

// StrategyForPriority picks a sensible strategy for a message priority:
// critical traffic should never be dropped, low-priority traffic should
// never stall a sender.
func StrategyForPriority(p message.Priority) BackpressureStrategy {
	switch p {
	case message.PriorityCritical:
		return BackpressureBlock
	case message.PriorityLow:
		return BackpressureDrop
	default:
		return BackpressureError
	}
}
