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
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/actor-go/pkg/ids"
)

// Envelope wraps a payload with the metadata the runtime needs to route and
// expire it. Envelopes are values; copying one (for broker fanout) copies the
// metadata, while the payload is shared the way any Go value is.
//
// TTL is measured from Timestamp. A zero TTL means the message never expires.
type Envelope[M Message] struct {
	ID            ids.MessageID
	Payload       M
	Sender        *ids.ActorAddress
	ReplyTo       *ids.ActorAddress
	CorrelationID uuid.UUID
	Timestamp     time.Time
	Priority      Priority
	TTL           time.Duration
}

// NewEnvelope wraps payload with a fresh message ID and the payload's default
// priority. The timestamp is taken once here; TTL expiry is always judged
// against it.
func NewEnvelope[M Message](payload M) Envelope[M] {
	return Envelope[M]{
		ID:        ids.NewMessageID(),
		Payload:   payload,
		Timestamp: time.Now(),
		Priority:  payload.Priority(),
	}
}

// WithSender records the sending actor's address.
func (e Envelope[M]) WithSender(addr ids.ActorAddress) Envelope[M] {
	e.Sender = &addr
	return e
}

// WithReplyTo records where responses should be delivered.
func (e Envelope[M]) WithReplyTo(addr ids.ActorAddress) Envelope[M] {
	e.ReplyTo = &addr
	return e
}

// WithCorrelationID tags the envelope for request/response matching.
func (e Envelope[M]) WithCorrelationID(id uuid.UUID) Envelope[M] {
	e.CorrelationID = id
	return e
}

// WithPriority overrides the payload's default priority.
func (e Envelope[M]) WithPriority(p Priority) Envelope[M] {
	e.Priority = p
	return e
}

// WithTTL sets the time-to-live. Expired envelopes are dropped at receive
// time and never reach a handler.
func (e Envelope[M]) WithTTL(ttl time.Duration) Envelope[M] {
	e.TTL = ttl
	return e
}

// MessageType returns the payload's type name.
func (e Envelope[M]) MessageType() string {
	return e.Payload.MessageType()
}

// HasCorrelation reports whether the envelope carries a correlation ID.
func (e Envelope[M]) HasCorrelation() bool {
	return e.CorrelationID != uuid.Nil
}

// Expired reports whether the TTL has elapsed.
func (e Envelope[M]) Expired() bool {
	return e.ExpiredAt(time.Now())
}

// ExpiredAt reports whether the TTL has elapsed as of now.
func (e Envelope[M]) ExpiredAt(now time.Time) bool {
	if e.TTL <= 0 {
		return false
	}
	return now.Sub(e.Timestamp) > e.TTL
}

// Age returns how long ago the envelope was created.
func (e Envelope[M]) Age() time.Duration {
	return time.Since(e.Timestamp)
}
