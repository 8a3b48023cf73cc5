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
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/actor-go/pkg/ids"
	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/monitoring"
)

// PoolStrategy selects a member when sending to a pool.
type PoolStrategy int

const (
	RoundRobin PoolStrategy = iota
	Random
)

type registration[M message.Message] struct {
	addr ids.ActorAddress
	mb   mailbox.Mailbox[M]
}

// Registry is a routing table from actor addresses to mailboxes. Names of
// the form "pool:member" additionally join the named pool, which can be
// addressed as a group with round-robin or random member selection.
//
// Registry also brokers request/response: Request tags an envelope with a
// fresh correlation ID and parks a one-shot reply channel until Respond
// delivers the answer or the timeout fires.
type Registry[M message.Message] struct {
	mu      sync.RWMutex
	byID    map[ids.ActorID]registration[M]
	byName  map[string]ids.ActorID
	pools   map[string][]string
	cursors map[string]int

	pendingMu sync.Mutex
	pending   map[uuid.UUID]chan message.Envelope[M]

	monitor monitoring.Monitor[monitoring.BrokerEvent]
}

// NewRegistry creates an empty routing table.
func NewRegistry[M message.Message](opts ...Option) *Registry[M] {
	o := buildOptions(opts)
	return &Registry[M]{
		byID:    make(map[ids.ActorID]registration[M]),
		byName:  make(map[string]ids.ActorID),
		pools:   make(map[string][]string),
		cursors: make(map[string]int),
		pending: make(map[uuid.UUID]chan message.Envelope[M]),
		monitor: o.monitor,
	}
}

// Register adds a route from addr to mb. A named address must be unique by
// name; a name of the form "pool:member" also joins pool "pool".
func (r *Registry[M]) Register(addr ids.ActorAddress, mb mailbox.Mailbox[M]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name, named := addr.Name()
	if named {
		if _, exists := r.byName[name]; exists {
			return &DuplicateError{Name: name}
		}
		r.byName[name] = addr.ID()
		if pool, ok := poolOf(name); ok {
			r.pools[pool] = append(r.pools[pool], name)
		}
	}
	r.byID[addr.ID()] = registration[M]{addr: addr, mb: mb}
	return nil
}

// Unregister removes the route for addr. Pool membership is removed with it.
func (r *Registry[M]) Unregister(addr ids.ActorAddress) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[addr.ID()]; !ok {
		return &NotFoundError{Name: addr.String()}
	}
	delete(r.byID, addr.ID())

	if name, named := addr.Name(); named {
		delete(r.byName, name)
		if pool, ok := poolOf(name); ok {
			members := r.pools[pool]
			for i, m := range members {
				if m == name {
					r.pools[pool] = append(members[:i], members[i+1:]...)
					break
				}
			}
			if len(r.pools[pool]) == 0 {
				delete(r.pools, pool)
				delete(r.cursors, pool)
			}
		}
	}
	return nil
}

// Resolve returns the address registered under name.
func (r *Registry[M]) Resolve(name string) (ids.ActorAddress, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	if !ok {
		return ids.ActorAddress{}, &NotFoundError{Name: name}
	}
	return r.byID[id].addr, nil
}

// Send delivers env to the mailbox registered for addr.
func (r *Registry[M]) Send(ctx context.Context, addr ids.ActorAddress, env message.Envelope[M]) error {
	r.mu.RLock()
	reg, ok := r.byID[addr.ID()]
	r.mu.RUnlock()
	if !ok {
		return &NotFoundError{Name: addr.String()}
	}
	return reg.mb.Send(ctx, env)
}

// SendNamed delivers env to the actor registered under name.
func (r *Registry[M]) SendNamed(ctx context.Context, name string, env message.Envelope[M]) error {
	addr, err := r.Resolve(name)
	if err != nil {
		return err
	}
	return r.Send(ctx, addr, env)
}

// SendToPool delivers env to one member of the pool, chosen by strategy.
func (r *Registry[M]) SendToPool(ctx context.Context, pool string, env message.Envelope[M], strategy PoolStrategy) error {
	member, err := r.pickMember(pool, strategy)
	if err != nil {
		return err
	}
	return r.SendNamed(ctx, member, env)
}

// PoolMembers returns the registered member names of a pool.
func (r *Registry[M]) PoolMembers(pool string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := make([]string, len(r.pools[pool]))
	copy(members, r.pools[pool])
	return members
}

func (r *Registry[M]) pickMember(pool string, strategy PoolStrategy) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.pools[pool]
	if len(members) == 0 {
		return "", &PoolEmptyError{Pool: pool}
	}
	switch strategy {
	case Random:
		return members[rand.Intn(len(members))], nil
	default: // RoundRobin
		idx := r.cursors[pool] % len(members)
		r.cursors[pool]++
		return members[idx], nil
	}
}

// Request sends env to addr tagged with a fresh correlation ID and waits for
// the matching Respond, the timeout, or context cancellation. The reply
// channel is removed on every exit path, so late replies are discarded.
func (r *Registry[M]) Request(ctx context.Context, addr ids.ActorAddress, env message.Envelope[M], timeout time.Duration) (message.Envelope[M], error) {
	var zero message.Envelope[M]

	corr := uuid.New()
	replyCh := make(chan message.Envelope[M], 1)
	r.pendingMu.Lock()
	r.pending[corr] = replyCh
	r.pendingMu.Unlock()

	removePending := func() {
		r.pendingMu.Lock()
		delete(r.pending, corr)
		r.pendingMu.Unlock()
	}

	if err := r.Send(ctx, addr, env.WithCorrelationID(corr)); err != nil {
		removePending()
		return zero, err
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case reply := <-replyCh:
		removePending()
		return reply, nil
	case <-timer.C:
		removePending()
		_ = r.monitor.Record(monitoring.BrokerEvent{
			At:          time.Now(),
			Kind:        monitoring.RequestTimedOut,
			Address:     addr.String(),
			MessageType: env.MessageType(),
		})
		return zero, &RequestTimeoutError{CorrelationID: corr, Timeout: timeout}
	case <-ctx.Done():
		removePending()
		return zero, ctx.Err()
	}
}

// Respond delivers a reply to the request waiting on env's correlation ID.
// Replies to unknown or already-completed requests report not found.
func (r *Registry[M]) Respond(env message.Envelope[M]) error {
	if !env.HasCorrelation() {
		return ErrNoCorrelation
	}
	r.pendingMu.Lock()
	replyCh, ok := r.pending[env.CorrelationID]
	if ok {
		delete(r.pending, env.CorrelationID)
	}
	r.pendingMu.Unlock()
	if !ok {
		return &NotFoundError{Name: env.CorrelationID.String()}
	}
	replyCh <- env
	return nil
}

// Len reports the number of registered routes.
func (r *Registry[M]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

func poolOf(name string) (string, bool) {
	if i := strings.IndexByte(name, ':'); i > 0 {
		return name[:i], true
	}
	return "", false
}
