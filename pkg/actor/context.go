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

package actor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/turtacn/actor-go/pkg/broker"
	"github.com/turtacn/actor-go/pkg/ids"
	"github.com/turtacn/actor-go/pkg/message"
)

// ErrNoRegistry is returned by Context sends when the actor was created
// without a registry.
var ErrNoRegistry = errors.New("actor has no registry")

// Context gives an actor access to its own identity and to the runtime it
// lives in. It is handed to every hook and handler call.
type Context[M message.Message] struct {
	addr      ids.ActorAddress
	registry  *broker.Registry[M]
	startedAt time.Time

	currentMu sync.RWMutex
	current   message.Envelope[M]
}

// NewContext creates a context for an actor at addr. registry may be nil for
// actors that never send.
func NewContext[M message.Message](addr ids.ActorAddress, registry *broker.Registry[M]) *Context[M] {
	return &Context[M]{
		addr:      addr,
		registry:  registry,
		startedAt: time.Now(),
	}
}

// Address returns the actor's own address.
func (c *Context[M]) Address() ids.ActorAddress {
	return c.addr
}

// Self returns the actor's ID.
func (c *Context[M]) Self() ids.ActorID {
	return c.addr.ID()
}

// Uptime reports how long the actor has existed.
func (c *Context[M]) Uptime() time.Duration {
	return time.Since(c.startedAt)
}

// Envelope returns the envelope of the message currently being handled. It is
// only meaningful inside HandleMessage.
func (c *Context[M]) Envelope() message.Envelope[M] {
	c.currentMu.RLock()
	defer c.currentMu.RUnlock()
	return c.current
}

func (c *Context[M]) setEnvelope(env message.Envelope[M]) {
	c.currentMu.Lock()
	c.current = env
	c.currentMu.Unlock()
}

// Send delivers an envelope to another actor, stamping this actor as the
// sender.
func (c *Context[M]) Send(ctx context.Context, to ids.ActorAddress, env message.Envelope[M]) error {
	if c.registry == nil {
		return ErrNoRegistry
	}
	return c.registry.Send(ctx, to, env.WithSender(c.addr))
}

// SendNamed delivers an envelope to a registered name.
func (c *Context[M]) SendNamed(ctx context.Context, name string, env message.Envelope[M]) error {
	if c.registry == nil {
		return ErrNoRegistry
	}
	return c.registry.SendNamed(ctx, name, env.WithSender(c.addr))
}

// Reply answers a request envelope: the reply carries the request's
// correlation ID and is routed back to the waiting caller.
func (c *Context[M]) Reply(request message.Envelope[M], reply message.Envelope[M]) error {
	if c.registry == nil {
		return ErrNoRegistry
	}
	return c.registry.Respond(reply.WithCorrelationID(request.CorrelationID).WithSender(c.addr))
}
