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
	"errors"
	"time"

	"github.com/Workiva/go-datastructures/queue"

	"github.com/turtacn/actor-go/pkg/message"
)

// pollInterval bounds how long a blocked Receive waits between checks of the
// caller's context.
const pollInterval = 10 * time.Millisecond

// Unbounded is a mailbox without a capacity limit, backed by a growable
// queue. Sends never block and never apply backpressure.
type Unbounded[M message.Message] struct {
	q       *queue.Queue
	metrics MetricsRecorder
}

// NewUnbounded creates an unbounded mailbox. The hint presizes the backing
// queue and is not a limit.
func NewUnbounded[M message.Message](hint int, opts ...Option) *Unbounded[M] {
	if hint < 1 {
		hint = 64
	}
	o := buildOptions(opts)
	return &Unbounded[M]{
		q:       queue.New(int64(hint)),
		metrics: o.metrics,
	}
}

// Send enqueues env. It only fails once the mailbox is closed.
func (m *Unbounded[M]) Send(_ context.Context, env message.Envelope[M]) error {
	if err := m.q.Put(env); err != nil {
		if errors.Is(err, queue.ErrDisposed) {
			return ErrClosed
		}
		return err
	}
	m.metrics.RecordSent()
	return nil
}

// TrySend is identical to Send; an unbounded mailbox never blocks.
func (m *Unbounded[M]) TrySend(env message.Envelope[M]) error {
	return m.Send(context.Background(), env)
}

// Receive blocks for the next live envelope, dropping expired ones along the
// way.
func (m *Unbounded[M]) Receive(ctx context.Context) (message.Envelope[M], error) {
	var zero message.Envelope[M]
	for {
		items, err := m.q.Poll(1, pollInterval)
		if err != nil {
			if errors.Is(err, queue.ErrDisposed) {
				return zero, ErrClosed
			}
			if errors.Is(err, queue.ErrTimeout) {
				select {
				case <-ctx.Done():
					return zero, ctx.Err()
				default:
					continue
				}
			}
			return zero, err
		}
		env := items[0].(message.Envelope[M])
		if env.Expired() {
			m.metrics.RecordDropped()
			continue
		}
		m.metrics.RecordReceived()
		return env, nil
	}
}

// TryReceive returns the next live envelope or ErrEmpty immediately.
func (m *Unbounded[M]) TryReceive() (message.Envelope[M], error) {
	var zero message.Envelope[M]
	for {
		if m.q.Disposed() {
			return zero, ErrClosed
		}
		if m.q.Empty() {
			return zero, ErrEmpty
		}
		items, err := m.q.Poll(1, time.Millisecond)
		if err != nil {
			if errors.Is(err, queue.ErrDisposed) {
				return zero, ErrClosed
			}
			if errors.Is(err, queue.ErrTimeout) {
				return zero, ErrEmpty
			}
			return zero, err
		}
		env := items[0].(message.Envelope[M])
		if env.Expired() {
			m.metrics.RecordDropped()
			continue
		}
		m.metrics.RecordReceived()
		return env, nil
	}
}

// Capacity reports (0, false): there is no limit.
func (m *Unbounded[M]) Capacity() (int, bool) {
	return 0, false
}

// Len is an approximation derived from the metrics counters, not a count of
// the backing queue. It can briefly disagree with the queue while sends and
// receives race.
func (m *Unbounded[M]) Len() int {
	return int(m.metrics.InFlight())
}

// Metrics exposes the traffic recorder.
func (m *Unbounded[M]) Metrics() MetricsRecorder {
	return m.metrics
}

// Close disposes the backing queue. Close is idempotent; queued messages are
// discarded.
func (m *Unbounded[M]) Close() {
	if !m.q.Disposed() {
		m.q.Dispose()
	}
}
