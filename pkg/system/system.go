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

// Package system ties the runtime together: it spawns actors onto mailboxes,
// registers their addresses, supervises their runners, and tears everything
// down in order on shutdown.
package system

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/broker"
	"github.com/turtacn/actor-go/pkg/ids"
	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/metrics"
	"github.com/turtacn/actor-go/pkg/monitoring"
	"github.com/turtacn/actor-go/pkg/supervisor"
)

// defaultStopGrace bounds a single actor's stop when the spawn did not pick a
// shutdown policy.
const defaultStopGrace = 5 * time.Second

// Option configures a System.
type Option func(*options)

type options struct {
	supOpts      supervisor.Options
	monitor      monitoring.Monitor[monitoring.SystemEvent]
	actorMonitor monitoring.Monitor[monitoring.ActorEvent]
}

// WithSupervisorOptions sets the restart strategy and limits for the system's
// supervisor.
func WithSupervisorOptions(opts supervisor.Options) Option {
	return func(o *options) { o.supOpts = opts }
}

// WithMonitor wires a monitor for system-level events.
func WithMonitor(m monitoring.Monitor[monitoring.SystemEvent]) Option {
	return func(o *options) { o.monitor = m }
}

// WithActorMonitor wires a monitor handed to every spawned runner.
func WithActorMonitor(m monitoring.Monitor[monitoring.ActorEvent]) Option {
	return func(o *options) { o.actorMonitor = m }
}

// SpawnOption configures a single actor at spawn time.
type SpawnOption func(*spawnOptions)

type spawnOptions struct {
	capacity     int
	unbounded    bool
	backpressure mailbox.BackpressureStrategy
	hasStrategy  bool
	restart      supervisor.RestartPolicy
	shutdown     supervisor.ShutdownPolicy
	hasShutdown  bool
}

// WithMailboxCapacity overrides the system's default mailbox capacity.
func WithMailboxCapacity(n int) SpawnOption {
	return func(o *spawnOptions) { o.capacity = n }
}

// WithUnboundedMailbox gives the actor an unbounded mailbox.
func WithUnboundedMailbox() SpawnOption {
	return func(o *spawnOptions) { o.unbounded = true }
}

// WithBackpressure sets the bounded mailbox's full-queue behavior.
func WithBackpressure(s mailbox.BackpressureStrategy) SpawnOption {
	return func(o *spawnOptions) {
		o.backpressure = s
		o.hasStrategy = true
	}
}

// WithRestartPolicy sets how the supervisor treats the actor's exits.
func WithRestartPolicy(p supervisor.RestartPolicy) SpawnOption {
	return func(o *spawnOptions) { o.restart = p }
}

// WithShutdownPolicy sets how the actor is stopped.
func WithShutdownPolicy(p supervisor.ShutdownPolicy) SpawnOption {
	return func(o *spawnOptions) {
		o.shutdown = p
		o.hasShutdown = true
	}
}

type actorEntry[M message.Message] struct {
	addr ids.ActorAddress
	mb   mailbox.Mailbox[M]
	// runner is the child's current life. Watchers compare against it so a
	// discarded old runner cannot act on behalf of its replacement.
	runner *actor.Runner[M]
}

// System is the actor runtime shell. It owns a registry for addressing, a
// supervisor for restarts, and the mailboxes of every actor it spawned.
type System[M message.Message] struct {
	cfg          Config
	registry     *broker.Registry[M]
	sup          *supervisor.Supervisor
	monitor      monitoring.Monitor[monitoring.SystemEvent]
	actorMonitor monitoring.Monitor[monitoring.ActorEvent]

	mu           sync.Mutex
	actors       map[string]*actorEntry[M]
	shuttingDown bool
}

// New creates a system with cfg. Invalid or zero limits fall back to
// defaults.
func New[M message.Message](cfg Config, opts ...Option) *System[M] {
	o := options{
		monitor:      monitoring.NewNoop[monitoring.SystemEvent](),
		actorMonitor: monitoring.NewNoop[monitoring.ActorEvent](),
	}
	for _, opt := range opts {
		opt(&o)
	}
	s := &System[M]{
		cfg:          cfg.withDefaults(),
		registry:     broker.NewRegistry[M](),
		sup:          supervisor.New(o.supOpts),
		monitor:      o.monitor,
		actorMonitor: o.actorMonitor,
		actors:       make(map[string]*actorEntry[M]),
	}
	s.event(monitoring.SystemEvent{Kind: monitoring.SystemStarted})
	return s
}

// Spawn starts an actor and returns its address. An empty name spawns an
// anonymous actor; a named actor's name must be unique. The factory is called
// once per life, so a restarted actor begins from fresh state while its
// mailbox and queued messages carry over.
func (s *System[M]) Spawn(ctx context.Context, name string, factory func() actor.Actor[M], opts ...SpawnOption) (ids.ActorAddress, error) {
	var zero ids.ActorAddress
	so := spawnOptions{capacity: s.cfg.DefaultMailboxCapacity, restart: supervisor.RestartPermanent}
	for _, opt := range opts {
		opt(&so)
	}

	var addr ids.ActorAddress
	if name == "" {
		addr = ids.NewAnonymousAddress()
	} else {
		addr = ids.NewNamedAddress(name)
	}
	id := childID(addr)
	mb := s.buildMailbox(so)

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		mb.Close()
		return zero, ErrShuttingDown
	}
	if s.cfg.MaxActors > 0 && len(s.actors) >= s.cfg.MaxActors {
		count := len(s.actors)
		s.mu.Unlock()
		mb.Close()
		s.event(monitoring.SystemEvent{Kind: monitoring.ActorLimitReached, ActorID: addr.String(), ActorCount: count})
		return zero, &ActorLimitError{Max: s.cfg.MaxActors}
	}
	if _, exists := s.actors[id]; exists {
		s.mu.Unlock()
		mb.Close()
		return zero, &SpawnError{Name: id, Err: &broker.DuplicateError{Name: id}}
	}
	s.actors[id] = &actorEntry[M]{addr: addr, mb: mb}
	s.mu.Unlock()

	if err := s.registry.Register(addr, mb); err != nil {
		s.dropEntry(id)
		mb.Close()
		return zero, &SpawnError{Name: id, Err: err}
	}

	actx := actor.NewContext[M](addr, s.registry)
	spec := supervisor.ChildSpec{
		ID:       id,
		Restart:  so.restart,
		Shutdown: s.shutdownPolicy(so),
		Factory: func() supervisor.Child {
			r := actor.NewRunner[M](factory(), mb, actx, actor.WithMonitor(s.actorMonitor))
			s.setRunner(id, r)
			go s.watch(id, r)
			return r
		},
		StartTimeout: s.cfg.SpawnTimeout,
	}
	if err := s.sup.StartChild(ctx, spec); err != nil {
		s.dropEntry(id)
		_ = s.registry.Unregister(addr)
		mb.Close()
		return zero, &SpawnError{Name: id, Err: err}
	}

	metrics.ActorsSpawnedTotal.Inc()
	s.event(monitoring.SystemEvent{Kind: monitoring.ActorSpawned, ActorID: addr.String(), ActorCount: s.ActorCount()})
	return addr, nil
}

// StopActor stops the actor at addr, removes its route, and closes its
// mailbox.
func (s *System[M]) StopActor(ctx context.Context, addr ids.ActorAddress) error {
	id := childID(addr)

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	entry, ok := s.actors[id]
	if ok {
		delete(s.actors, id)
	}
	s.mu.Unlock()
	if !ok {
		return &supervisor.NotFoundError{ID: id}
	}

	err := s.sup.StopChild(ctx, id)
	_ = s.registry.Unregister(entry.addr)
	entry.mb.Close()
	return err
}

// Send delivers an envelope to the actor at addr.
func (s *System[M]) Send(ctx context.Context, addr ids.ActorAddress, env message.Envelope[M]) error {
	if s.isShuttingDown() {
		return ErrShuttingDown
	}
	return s.registry.Send(ctx, addr, env)
}

// SendNamed delivers an envelope to the actor registered under name.
func (s *System[M]) SendNamed(ctx context.Context, name string, env message.Envelope[M]) error {
	if s.isShuttingDown() {
		return ErrShuttingDown
	}
	return s.registry.SendNamed(ctx, name, env)
}

// Request sends env to addr and waits for the actor's reply.
func (s *System[M]) Request(ctx context.Context, addr ids.ActorAddress, env message.Envelope[M], timeout time.Duration) (message.Envelope[M], error) {
	if s.isShuttingDown() {
		var zero message.Envelope[M]
		return zero, ErrShuttingDown
	}
	return s.registry.Request(ctx, addr, env, timeout)
}

// Resolve looks up a named actor's address.
func (s *System[M]) Resolve(name string) (ids.ActorAddress, error) {
	return s.registry.Resolve(name)
}

// Registry exposes the system's routing table, for pool sends and manual
// registrations.
func (s *System[M]) Registry() *broker.Registry[M] {
	return s.registry
}

// Supervisor exposes the system's supervisor, for health monitoring.
func (s *System[M]) Supervisor() *supervisor.Supervisor {
	return s.sup
}

// ActorCount reports the number of live actors.
func (s *System[M]) ActorCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.actors)
}

// Shutdown stops all actors gracefully, newest first. Actors that outlive the
// configured shutdown timeout are forced down and reported in a
// ShutdownTimeoutError.
func (s *System[M]) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	s.shuttingDown = true
	count := len(s.actors)
	s.mu.Unlock()
	s.event(monitoring.SystemEvent{Kind: monitoring.ShutdownInitiated, ActorCount: count})

	done := make(chan error, 1)
	go func() { done <- s.sup.Shutdown(ctx) }()

	timer := time.NewTimer(s.cfg.ShutdownTimeout)
	defer timer.Stop()
	select {
	case err := <-done:
		s.releaseAll()
		s.event(monitoring.SystemEvent{Kind: monitoring.ShutdownCompleted})
		return err
	case <-timer.C:
	case <-ctx.Done():
	}

	// Close every mailbox so stuck loops see the closure and exit, then
	// give the supervisor a moment to finish.
	remaining := s.releaseAll()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	s.event(monitoring.SystemEvent{Kind: monitoring.ShutdownForced, ActorCount: remaining})
	return &ShutdownTimeoutError{Timeout: s.cfg.ShutdownTimeout, Remaining: remaining}
}

// ForceShutdown skips the graceful wait: mailboxes close immediately and the
// supervisor tears children down with whatever their shutdown policies allow.
func (s *System[M]) ForceShutdown(ctx context.Context) error {
	s.mu.Lock()
	alreadyStopping := s.shuttingDown
	s.shuttingDown = true
	s.mu.Unlock()
	if alreadyStopping {
		return ErrShuttingDown
	}

	s.event(monitoring.SystemEvent{Kind: monitoring.ShutdownForced, ActorCount: s.ActorCount()})
	s.releaseAll()
	err := s.sup.Shutdown(ctx)
	s.event(monitoring.SystemEvent{Kind: monitoring.ShutdownCompleted})
	return err
}

func (s *System[M]) isShuttingDown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shuttingDown
}

// watch reacts to an actor's loop exiting on its own: failures go through the
// supervisor's restart pipeline, clean exits release the actor's resources.
// Exits of a superseded runner (one the supervisor already replaced or is
// replacing) are ignored; the restart pipeline owns that life's cleanup.
func (s *System[M]) watch(id string, r *actor.Runner[M]) {
	<-r.Done()
	if s.isShuttingDown() {
		return
	}
	err := r.Err()
	if err == nil {
		// A clean exit with Stop requested means the supervisor or
		// StopActor wound this runner down; whoever asked owns the
		// cleanup. Without it the actor stopped itself.
		if r.StopRequested() || !s.isCurrentRunner(id, r) {
			return
		}
		s.release(context.Background(), id)
		return
	}
	if !s.isCurrentRunner(id, r) {
		return
	}
	if ferr := s.sup.HandleChildFailure(context.Background(), id, err); ferr != nil {
		log.Printf("System: actor %s will not be restarted: %v", id, ferr)
		s.release(context.Background(), id)
	}
}

func (s *System[M]) setRunner(id string, r *actor.Runner[M]) {
	s.mu.Lock()
	if entry, ok := s.actors[id]; ok {
		entry.runner = r
	}
	s.mu.Unlock()
}

func (s *System[M]) isCurrentRunner(id string, r *actor.Runner[M]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.actors[id]
	return ok && entry.runner == r
}

// release drops one actor's route and mailbox if it is still tracked.
func (s *System[M]) release(ctx context.Context, id string) {
	s.mu.Lock()
	entry, ok := s.actors[id]
	if ok {
		delete(s.actors, id)
	}
	s.mu.Unlock()
	if !ok {
		return
	}
	_ = s.sup.StopChild(ctx, id)
	_ = s.registry.Unregister(entry.addr)
	entry.mb.Close()
}

// releaseAll drops every route and closes every mailbox, returning how many
// actors were still tracked.
func (s *System[M]) releaseAll() int {
	s.mu.Lock()
	entries := make([]*actorEntry[M], 0, len(s.actors))
	for id, e := range s.actors {
		entries = append(entries, e)
		delete(s.actors, id)
	}
	s.mu.Unlock()
	for _, e := range entries {
		_ = s.registry.Unregister(e.addr)
		e.mb.Close()
	}
	return len(entries)
}

func (s *System[M]) dropEntry(id string) {
	s.mu.Lock()
	delete(s.actors, id)
	s.mu.Unlock()
}

func (s *System[M]) buildMailbox(so spawnOptions) mailbox.Mailbox[M] {
	recorder := metrics.NewMailboxRecorder()
	if so.unbounded {
		return mailbox.NewUnbounded[M](so.capacity, mailbox.WithMetrics(recorder))
	}
	opts := []mailbox.Option{mailbox.WithMetrics(recorder)}
	if so.hasStrategy {
		opts = append(opts, mailbox.WithStrategy(so.backpressure))
	}
	return mailbox.NewBounded[M](so.capacity, opts...)
}

func (s *System[M]) shutdownPolicy(so spawnOptions) supervisor.ShutdownPolicy {
	if so.hasShutdown {
		return so.shutdown
	}
	return supervisor.ShutdownGraceful(defaultStopGrace)
}

func (s *System[M]) event(ev monitoring.SystemEvent) {
	ev.At = time.Now()
	_ = s.monitor.Record(ev)
}

// childID keys supervisor children and the actor table: the name for named
// actors, the UUID for anonymous ones.
func childID(addr ids.ActorAddress) string {
	if name, ok := addr.Name(); ok {
		return name
	}
	return addr.ID().String()
}
