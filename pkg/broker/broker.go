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

// Package broker routes messages between actors inside one process. It has
// two halves: a fanout Broker that clones every published envelope to all
// current subscribers, and a Registry that maps addresses to mailboxes for
// direct sends, pooled dispatch, and request/response.
package broker

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/metrics"
	"github.com/turtacn/actor-go/pkg/monitoring"
)

// defaultStreamBuffer is the per-subscriber channel capacity.
const defaultStreamBuffer = 64

// Option configures a Broker or Registry.
type Option func(*options)

type options struct {
	streamBuffer int
	monitor      monitoring.Monitor[monitoring.BrokerEvent]
}

// WithStreamBuffer sets the per-subscriber channel capacity.
func WithStreamBuffer(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.streamBuffer = n
		}
	}
}

// WithMonitor wires a monitor that receives broker events.
func WithMonitor(m monitoring.Monitor[monitoring.BrokerEvent]) Option {
	return func(o *options) { o.monitor = m }
}

func buildOptions(opts []Option) options {
	o := options{
		streamBuffer: defaultStreamBuffer,
		monitor:      monitoring.NewNoop[monitoring.BrokerEvent](),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Broker fans published envelopes out to every current subscriber. There is
// no replay: a subscriber only sees messages published after it subscribed.
type Broker[M message.Message] struct {
	mu      sync.RWMutex
	subs    map[uint64]chan message.Envelope[M]
	nextID  uint64
	closed  bool
	opts    options
	monitor monitoring.Monitor[monitoring.BrokerEvent]
}

// New creates an empty broker.
func New[M message.Message](opts ...Option) *Broker[M] {
	o := buildOptions(opts)
	return &Broker[M]{
		subs:    make(map[uint64]chan message.Envelope[M]),
		opts:    o,
		monitor: o.monitor,
	}
}

// Subscribe registers a new subscriber stream. Cancel the subscription when
// done; an abandoned subscription fills up and its deliveries are dropped.
func (b *Broker[M]) Subscribe() (*Subscription[M], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBrokerClosed
	}

	id := b.nextID
	b.nextID++
	ch := make(chan message.Envelope[M], b.opts.streamBuffer)
	b.subs[id] = ch

	_ = b.monitor.Record(monitoring.BrokerEvent{
		At:          time.Now(),
		Kind:        monitoring.SubscriberAdded,
		Subscribers: len(b.subs),
	})

	sub := &Subscription[M]{ch: ch}
	sub.cancel = func() { b.unsubscribe(id) }
	return sub, nil
}

func (b *Broker[M]) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.subs[id]
	if !ok {
		return
	}
	delete(b.subs, id)
	// No publisher can hold ch anymore: Publish sends under RLock, which
	// this Lock has excluded.
	close(ch)

	_ = b.monitor.Record(monitoring.BrokerEvent{
		At:          time.Now(),
		Kind:        monitoring.SubscriberRemoved,
		Subscribers: len(b.subs),
	})
}

// Publish clones env to every current subscriber. A subscriber whose stream
// is full misses the message; the drop is counted.
func (b *Broker[M]) Publish(env message.Envelope[M]) error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}

	metrics.BrokerPublishedTotal.Inc()
	_ = b.monitor.Record(monitoring.BrokerEvent{
		At:          time.Now(),
		Kind:        monitoring.MessagePublished,
		MessageType: env.MessageType(),
		Subscribers: len(b.subs),
	})

	for _, ch := range b.subs {
		select {
		case ch <- env:
			metrics.BrokerDeliveredTotal.Inc()
		default:
			metrics.BrokerDroppedTotal.Inc()
			_ = b.monitor.Record(monitoring.BrokerEvent{
				At:          time.Now(),
				Kind:        monitoring.DeliveryDropped,
				MessageType: env.MessageType(),
			})
		}
	}
	return nil
}

// SubscriberCount reports the number of live subscriptions.
func (b *Broker[M]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close cancels all subscriptions and rejects further publishes.
func (b *Broker[M]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// Subscription is one subscriber's stream of published envelopes.
type Subscription[M message.Message] struct {
	ch     chan message.Envelope[M]
	cancel func()
	once   sync.Once
}

// Receive blocks for the next envelope, the context, or cancellation.
func (s *Subscription[M]) Receive(ctx context.Context) (message.Envelope[M], error) {
	var zero message.Envelope[M]
	select {
	case env, ok := <-s.ch:
		if !ok {
			return zero, ErrSubscriptionClosed
		}
		return env, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Chan exposes the stream for use in a caller's own select.
func (s *Subscription[M]) Chan() <-chan message.Envelope[M] {
	return s.ch
}

// Cancel removes the subscription. Idempotent.
func (s *Subscription[M]) Cancel() {
	s.once.Do(s.cancel)
}
