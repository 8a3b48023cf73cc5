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
	"context"
	"sync"

	"github.com/turtacn/actor-go/pkg/message"
)

// Option configures a mailbox at construction time.
type Option func(*options)

type options struct {
	strategy BackpressureStrategy
	metrics  MetricsRecorder
}

// WithStrategy sets the backpressure strategy of a bounded mailbox.
// Unbounded mailboxes ignore it.
func WithStrategy(s BackpressureStrategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithMetrics replaces the default AtomicMetrics recorder.
func WithMetrics(r MetricsRecorder) Option {
	return func(o *options) { o.metrics = r }
}

func buildOptions(opts []Option) options {
	o := options{strategy: BackpressureError, metrics: NewAtomicMetrics()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Bounded is a fixed-capacity mailbox backed by a buffered channel.
type Bounded[M message.Message] struct {
	ch       chan message.Envelope[M]
	capacity int
	strategy BackpressureStrategy
	metrics  MetricsRecorder

	closed    chan struct{}
	closeOnce sync.Once
}

// NewBounded creates a mailbox holding at most capacity messages. The default
// strategy rejects sends when full; see WithStrategy.
func NewBounded[M message.Message](capacity int, opts ...Option) *Bounded[M] {
	if capacity < 1 {
		capacity = 1
	}
	o := buildOptions(opts)
	return &Bounded[M]{
		ch:       make(chan message.Envelope[M], capacity),
		capacity: capacity,
		strategy: o.strategy,
		metrics:  o.metrics,
		closed:   make(chan struct{}),
	}
}

// Send enqueues env, applying the backpressure strategy when the buffer is
// full. A dropped message (BackpressureDrop) is counted and Send reports
// success.
func (m *Bounded[M]) Send(ctx context.Context, env message.Envelope[M]) error {
	if m.isClosed() {
		return ErrClosed
	}
	switch m.strategy {
	case BackpressureBlock:
		select {
		case m.ch <- env:
		case <-ctx.Done():
			return ctx.Err()
		case <-m.closed:
			return ErrClosed
		}
	case BackpressureDrop:
		select {
		case m.ch <- env:
		default:
			m.metrics.RecordDropped()
			return nil
		}
	default: // BackpressureError
		select {
		case m.ch <- env:
		default:
			return &FullError{Capacity: m.capacity}
		}
	}
	m.metrics.RecordSent()
	return nil
}

// TrySend enqueues without blocking regardless of the configured strategy.
func (m *Bounded[M]) TrySend(env message.Envelope[M]) error {
	if m.isClosed() {
		return ErrClosed
	}
	select {
	case m.ch <- env:
		m.metrics.RecordSent()
		return nil
	default:
		return &FullError{Capacity: m.capacity}
	}
}

// Receive blocks for the next live envelope. Expired envelopes are dropped,
// counted, and skipped. After Close, queued messages are still drained before
// ErrClosed is reported.
func (m *Bounded[M]) Receive(ctx context.Context) (message.Envelope[M], error) {
	var zero message.Envelope[M]
	for {
		select {
		case env := <-m.ch:
			if env.Expired() {
				m.metrics.RecordDropped()
				continue
			}
			m.metrics.RecordReceived()
			return env, nil
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-m.closed:
			// Drain anything that was queued before the close.
			select {
			case env := <-m.ch:
				if env.Expired() {
					m.metrics.RecordDropped()
					continue
				}
				m.metrics.RecordReceived()
				return env, nil
			default:
				return zero, ErrClosed
			}
		}
	}
}

// TryReceive returns the next live envelope or ErrEmpty immediately.
func (m *Bounded[M]) TryReceive() (message.Envelope[M], error) {
	var zero message.Envelope[M]
	for {
		select {
		case env := <-m.ch:
			if env.Expired() {
				m.metrics.RecordDropped()
				continue
			}
			m.metrics.RecordReceived()
			return env, nil
		default:
			if m.isClosed() {
				return zero, ErrClosed
			}
			return zero, ErrEmpty
		}
	}
}

// Capacity returns the buffer limit; bounded mailboxes report true.
func (m *Bounded[M]) Capacity() (int, bool) {
	return m.capacity, true
}

// Len is the exact number of buffered messages.
func (m *Bounded[M]) Len() int {
	return len(m.ch)
}

// Metrics exposes the traffic recorder.
func (m *Bounded[M]) Metrics() MetricsRecorder {
	return m.metrics
}

// Close rejects further sends. Receivers drain the buffer and then observe
// ErrClosed. Close is idempotent.
func (m *Bounded[M]) Close() {
	m.closeOnce.Do(func() { close(m.closed) })
}

func (m *Bounded[M]) isClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}
