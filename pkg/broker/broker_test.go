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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/monitoring"
)

type note struct {
	Seq int
}

func (note) MessageType() string        { return "note" }
func (note) Priority() message.Priority { return message.PriorityNormal }

func TestPublishReachesAllSubscribers(t *testing.T) {
	b := New[note]()
	defer b.Close()
	ctx := context.Background()

	subs := make([]*Subscription[note], 5)
	for i := range subs {
		sub, err := b.Subscribe()
		require.NoError(t, err)
		subs[i] = sub
	}
	assert.Equal(t, 5, b.SubscriberCount())

	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 1})))

	for _, sub := range subs {
		env, err := sub.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, env.Payload.Seq)
	}
}

// A subscriber only sees messages published after it subscribed.
func TestNoReplayForLateSubscriber(t *testing.T) {
	b := New[note]()
	defer b.Close()

	early, err := b.Subscribe()
	require.NoError(t, err)

	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 1})))

	late, err := b.Subscribe()
	require.NoError(t, err)
	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 2})))

	ctx := context.Background()
	env, err := early.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, env.Payload.Seq)
	env, err = early.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, env.Payload.Seq)

	env, err = late.Receive(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, env.Payload.Seq)
}

// With a single publisher each subscriber observes publish order.
func TestPerSubscriberOrdering(t *testing.T) {
	b := New[note](WithStreamBuffer(128))
	defer b.Close()
	ctx := context.Background()

	sub, err := b.Subscribe()
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: i})))
	}
	for i := 0; i < 100; i++ {
		env, err := sub.Receive(ctx)
		require.NoError(t, err)
		assert.Equal(t, i, env.Payload.Seq)
	}
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	b := New[note](WithStreamBuffer(1))
	defer b.Close()

	sub, err := b.Subscribe()
	require.NoError(t, err)

	// Second publish overflows the stream and is dropped, not blocked.
	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 1})))
	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 2})))

	env, err := sub.Receive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, env.Payload.Seq)
}

func TestCancelSubscription(t *testing.T) {
	b := New[note]()
	defer b.Close()

	sub, err := b.Subscribe()
	require.NoError(t, err)
	sub.Cancel()
	sub.Cancel() // idempotent
	assert.Equal(t, 0, b.SubscriberCount())

	_, err = sub.Receive(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionClosed)
}

func TestPublishAfterClose(t *testing.T) {
	b := New[note]()
	sub, err := b.Subscribe()
	require.NoError(t, err)

	b.Close()
	b.Close() // idempotent

	assert.ErrorIs(t, b.Publish(message.NewEnvelope(note{Seq: 1})), ErrBrokerClosed)

	_, err = b.Subscribe()
	assert.ErrorIs(t, err, ErrBrokerClosed)

	_, err = sub.Receive(context.Background())
	assert.ErrorIs(t, err, ErrSubscriptionClosed)
}

func TestReceiveHonorsContext(t *testing.T) {
	b := New[note]()
	defer b.Close()

	sub, err := b.Subscribe()
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = sub.Receive(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBrokerRecordsEvents(t *testing.T) {
	cfg := monitoring.DefaultConfig()
	cfg.SeverityFilter = monitoring.SeverityTrace
	mon := monitoring.NewInMemory[monitoring.BrokerEvent](cfg)

	b := New[note](WithMonitor(mon))
	defer b.Close()

	sub, err := b.Subscribe()
	require.NoError(t, err)
	require.NoError(t, b.Publish(message.NewEnvelope(note{Seq: 1})))
	sub.Cancel()

	snap, err := mon.Snapshot()
	require.NoError(t, err)
	kinds := make(map[monitoring.BrokerEventKind]int)
	for _, ev := range snap.RecentEvents {
		kinds[ev.Kind]++
	}
	assert.Equal(t, 1, kinds[monitoring.SubscriberAdded])
	assert.Equal(t, 1, kinds[monitoring.MessagePublished])
	assert.Equal(t, 1, kinds[monitoring.SubscriberRemoved])
}
