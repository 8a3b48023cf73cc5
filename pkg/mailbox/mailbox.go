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

// Package mailbox provides per-actor message queues. A bounded mailbox is a
// buffered channel with a configurable backpressure strategy; an unbounded
// mailbox grows without limit. Both drop expired envelopes at receive time,
// so a handler never sees a message whose TTL has elapsed.
package mailbox

import (
	"context"

	"github.com/turtacn/actor-go/pkg/message"
)

// Mailbox is the common contract for bounded and unbounded mailboxes.
// All methods are safe for concurrent use.
type Mailbox[M message.Message] interface {
	// Send enqueues an envelope. For a full bounded mailbox the configured
	// BackpressureStrategy decides whether Send blocks, drops, or errors.
	Send(ctx context.Context, env message.Envelope[M]) error

	// TrySend enqueues without blocking regardless of strategy. A full
	// bounded mailbox yields a full error.
	TrySend(env message.Envelope[M]) error

	// Receive blocks until an envelope is available, the mailbox closes, or
	// the context is done. Expired envelopes are dropped and counted, and
	// the wait continues.
	Receive(ctx context.Context) (message.Envelope[M], error)

	// TryReceive returns immediately with ErrEmpty if nothing is queued.
	TryReceive() (message.Envelope[M], error)

	// Capacity returns the buffer limit and whether the mailbox is bounded.
	// Unbounded mailboxes return (0, false).
	Capacity() (int, bool)

	// Len reports the number of in-flight messages. For unbounded mailboxes
	// this is derived from the metrics counters and may briefly lag the
	// underlying queue.
	Len() int

	// Metrics exposes the recorder counting sent/received/dropped.
	Metrics() MetricsRecorder

	// Close shuts the mailbox. Subsequent sends fail with ErrClosed;
	// receivers drain what is already queued and then observe ErrClosed.
	Close()
}
