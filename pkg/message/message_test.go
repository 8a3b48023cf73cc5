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

package message

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/actor-go/pkg/ids"
)

type ping struct {
	Seq int
}

func (ping) MessageType() string { return "ping" }
func (ping) Priority() Priority  { return PriorityNormal }

type alert struct{}

func (alert) MessageType() string { return "alert" }
func (alert) Priority() Priority  { return PriorityCritical }

func TestPriorityOrdering(t *testing.T) {
	assert.True(t, PriorityLow < PriorityNormal)
	assert.True(t, PriorityNormal < PriorityHigh)
	assert.True(t, PriorityHigh < PriorityCritical)
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "low", PriorityLow.String())
	assert.Equal(t, "critical", PriorityCritical.String())
	assert.Equal(t, "unknown", Priority(42).String())
}

func TestNewEnvelopeDefaults(t *testing.T) {
	env := NewEnvelope(ping{Seq: 1})

	assert.False(t, env.ID.IsZero())
	assert.Equal(t, "ping", env.MessageType())
	assert.Equal(t, PriorityNormal, env.Priority)
	assert.Nil(t, env.Sender)
	assert.Nil(t, env.ReplyTo)
	assert.False(t, env.HasCorrelation())
	assert.False(t, env.Expired())
	assert.WithinDuration(t, time.Now(), env.Timestamp, time.Second)
}

func TestEnvelopeTakesPayloadPriority(t *testing.T) {
	env := NewEnvelope(alert{})
	assert.Equal(t, PriorityCritical, env.Priority)
}

func TestEnvelopeBuilders(t *testing.T) {
	sender := ids.NewNamedAddress("sender")
	replyTo := ids.NewNamedAddress("replies")
	corr := uuid.New()

	env := NewEnvelope(ping{Seq: 2}).
		WithSender(sender).
		WithReplyTo(replyTo).
		WithCorrelationID(corr).
		WithPriority(PriorityHigh).
		WithTTL(time.Minute)

	assert.Equal(t, sender, *env.Sender)
	assert.Equal(t, replyTo, *env.ReplyTo)
	assert.Equal(t, corr, env.CorrelationID)
	assert.True(t, env.HasCorrelation())
	assert.Equal(t, PriorityHigh, env.Priority)
	assert.Equal(t, time.Minute, env.TTL)
}

func TestEnvelopeBuildersDoNotMutateOriginal(t *testing.T) {
	base := NewEnvelope(ping{Seq: 3})
	withTTL := base.WithTTL(time.Second)

	assert.Zero(t, base.TTL)
	assert.Equal(t, time.Second, withTTL.TTL)
}

func TestEnvelopeExpiry(t *testing.T) {
	env := NewEnvelope(ping{Seq: 4}).WithTTL(10 * time.Millisecond)

	assert.False(t, env.ExpiredAt(env.Timestamp))
	assert.False(t, env.ExpiredAt(env.Timestamp.Add(10*time.Millisecond)))
	assert.True(t, env.ExpiredAt(env.Timestamp.Add(11*time.Millisecond)))
}

func TestEnvelopeNoTTLNeverExpires(t *testing.T) {
	env := NewEnvelope(ping{Seq: 5})
	assert.False(t, env.ExpiredAt(env.Timestamp.Add(24*time.Hour)))
}
