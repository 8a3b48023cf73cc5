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

import (
	"sync"
	"sync/atomic"
	"time"
)

// MetricsRecorder counts mailbox traffic. Implementations must be safe for
// concurrent use; every drop (backpressure or TTL) is counted.
type MetricsRecorder interface {
	RecordSent()
	RecordReceived()
	RecordDropped()

	SentCount() uint64
	ReceivedCount() uint64
	DroppedCount() uint64

	// InFlight is sent minus received, saturating at zero.
	InFlight() uint64

	// LastMessageAt reports when the last message was delivered, if any.
	LastMessageAt() (time.Time, bool)
}

// AtomicMetrics is the default lock-light MetricsRecorder.
type AtomicMetrics struct {
	sent     atomic.Uint64
	received atomic.Uint64
	dropped  atomic.Uint64

	mu            sync.RWMutex
	lastMessageAt time.Time
}

// NewAtomicMetrics returns a zeroed recorder.
func NewAtomicMetrics() *AtomicMetrics {
	return &AtomicMetrics{}
}

func (m *AtomicMetrics) RecordSent() {
	m.sent.Add(1)
}

func (m *AtomicMetrics) RecordReceived() {
	m.received.Add(1)
	m.mu.Lock()
	m.lastMessageAt = time.Now()
	m.mu.Unlock()
}

func (m *AtomicMetrics) RecordDropped() {
	m.dropped.Add(1)
}

func (m *AtomicMetrics) SentCount() uint64 {
	return m.sent.Load()
}

func (m *AtomicMetrics) ReceivedCount() uint64 {
	return m.received.Load()
}

func (m *AtomicMetrics) DroppedCount() uint64 {
	return m.dropped.Load()
}

// InFlight saturates at zero: the two loads are not atomic together, so a
// concurrent receive could otherwise make received exceed sent.
func (m *AtomicMetrics) InFlight() uint64 {
	sent := m.sent.Load()
	received := m.received.Load()
	if received > sent {
		return 0
	}
	return sent - received
}

func (m *AtomicMetrics) LastMessageAt() (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastMessageAt, !m.lastMessageAt.IsZero()
}
