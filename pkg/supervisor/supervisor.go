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

package supervisor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/turtacn/actor-go/pkg/ids"
	"github.com/turtacn/actor-go/pkg/metrics"
	"github.com/turtacn/actor-go/pkg/monitoring"
)

// Options configures a Supervisor. Zero values fall back to the defaults.
type Options struct {
	// Strategy decides how a failure propagates to siblings.
	Strategy Strategy

	// MaxRestarts and RestartWindow bound restarts per child: more than
	// MaxRestarts restarts inside one sliding RestartWindow marks the
	// child failed for good.
	MaxRestarts   int
	RestartWindow time.Duration

	// BaseDelay and MaxDelay shape the exponential backoff between
	// restart attempts.
	BaseDelay time.Duration
	MaxDelay  time.Duration

	// Monitor receives supervision events. Defaults to a no-op sink.
	Monitor monitoring.Monitor[monitoring.SupervisionEvent]
}

func (o Options) withDefaults() Options {
	if o.MaxRestarts <= 0 {
		o.MaxRestarts = DefaultMaxRestarts
	}
	if o.RestartWindow <= 0 {
		o.RestartWindow = DefaultRestartWindow
	}
	if o.BaseDelay <= 0 {
		o.BaseDelay = DefaultBaseDelay
	}
	if o.MaxDelay <= 0 {
		o.MaxDelay = DefaultMaxDelay
	}
	if o.Monitor == nil {
		o.Monitor = monitoring.NewNoop[monitoring.SupervisionEvent]()
	}
	return o
}

type childHandle struct {
	// mu serializes lifecycle transitions of this one child. Operations on
	// different children proceed independently.
	mu            sync.Mutex
	spec          ChildSpec
	child         Child
	state         ChildState
	tracker       *RestartTracker
	health        ChildHealth
	failures      int // consecutive failed health checks
	totalRestarts int
}

// Supervisor manages a set of children: it starts them, watches for
// failures, and applies the restart strategy within the restart budget.
type Supervisor struct {
	id      string
	opts    Options
	monitor monitoring.Monitor[monitoring.SupervisionEvent]

	mu           sync.RWMutex
	children     map[string]*childHandle
	order        []string
	shuttingDown bool

	// batchMu serializes supervision decisions so strategy batches never
	// interleave.
	batchMu sync.Mutex

	healthMu   sync.Mutex
	healthCfg  *HealthConfig
	healthStop chan struct{}
}

// New creates a supervisor with no children.
func New(opts Options) *Supervisor {
	o := opts.withDefaults()
	return &Supervisor{
		id:       ids.NewActorID().String(),
		opts:     o,
		monitor:  o.Monitor,
		children: make(map[string]*childHandle),
	}
}

// ID returns the supervisor's unique identifier.
func (s *Supervisor) ID() string {
	return s.id
}

// StartChild creates the child from its spec and starts it. A start failure
// engages the restart pipeline immediately, subject to the child's restart
// policy and budget; the returned error is the outcome of that pipeline.
func (s *Supervisor) StartChild(ctx context.Context, spec ChildSpec) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return ErrShuttingDown
	}
	if _, dup := s.children[spec.ID]; dup {
		s.mu.Unlock()
		return &DuplicateError{ID: spec.ID}
	}
	h := &childHandle{
		spec:    spec,
		state:   StateCreating,
		tracker: NewRestartTrackerWithBackoff(s.opts.MaxRestarts, s.opts.RestartWindow, s.opts.BaseDelay, s.opts.MaxDelay),
	}
	s.children[spec.ID] = h
	s.order = append(s.order, spec.ID)
	s.mu.Unlock()

	h.mu.Lock()
	err := s.startLocked(ctx, h)
	if err == nil {
		h.mu.Unlock()
		return nil
	}

	if !spec.Restart.ShouldRestart(true) {
		h.mu.Unlock()
		s.removeChild(spec.ID)
		return err
	}
	rerr := s.restartLocked(ctx, h)
	h.mu.Unlock()
	return rerr
}

// StopChild stops the child with its shutdown policy and removes it from the
// supervision table. Exceeding the grace period marks the child failed and
// reports a timeout.
func (s *Supervisor) StopChild(ctx context.Context, id string) error {
	s.mu.RLock()
	if s.shuttingDown {
		s.mu.RUnlock()
		return ErrShuttingDown
	}
	s.mu.RUnlock()
	return s.stopChildInternal(ctx, id)
}

func (s *Supervisor) stopChildInternal(ctx context.Context, id string) error {
	h, err := s.handle(id)
	if err != nil {
		return err
	}

	h.mu.Lock()
	if h.state.IsTerminal() {
		h.mu.Unlock()
		s.removeChild(id)
		return nil
	}
	serr := s.stopLocked(ctx, h)
	h.mu.Unlock()

	s.removeChild(id)
	return serr
}

// RestartChild runs the restart pipeline for one child: budget check,
// backoff delay, stop of the old instance, then a fresh start.
func (s *Supervisor) RestartChild(ctx context.Context, id string) error {
	s.mu.RLock()
	if s.shuttingDown {
		s.mu.RUnlock()
		return ErrShuttingDown
	}
	s.mu.RUnlock()

	h, err := s.handle(id)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return s.restartLocked(ctx, h)
}

// HandleChildFailure is the entry point for an observed child crash. cause
// nil means a normal exit. The restart policy decides whether the child
// comes back; the strategy decides which siblings restart with it.
func (s *Supervisor) HandleChildFailure(ctx context.Context, id string, cause error) error {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()

	h, err := s.handle(id)
	if err != nil {
		return err
	}

	wasError := cause != nil
	causeText := ""
	if wasError {
		causeText = cause.Error()
		metrics.ChildFailuresTotal.WithLabelValues(id).Inc()
		s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildFailed, ChildID: id, Error: causeText})
		log.Printf("Child %s failed: %v", id, cause)
	} else {
		log.Printf("Child %s exited normally", id)
	}

	if !h.spec.Restart.ShouldRestart(wasError) {
		log.Printf("Child %s will not be restarted (%s policy)", id, h.spec.Restart)
		h.mu.Lock()
		s.discardInstanceLocked(h)
		h.state = StateTerminated
		h.mu.Unlock()
		s.removeChild(id)
		s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildStopped, ChildID: id})
		return nil
	}

	members := s.strategyMembers(id)
	if len(members) > 1 {
		s.event(monitoring.SupervisionEvent{
			Kind:          monitoring.StrategyApplied,
			ChildID:       id,
			Strategy:      s.opts.Strategy.String(),
			AffectedCount: len(members),
		})
		log.Printf("Applying %s: restarting %d children after failure of %s", s.opts.Strategy, len(members), id)
	}

	// Stop phase, reverse start order.
	for i := len(members) - 1; i >= 0; i-- {
		if mh, err := s.handle(members[i]); err == nil {
			mh.mu.Lock()
			s.discardInstanceLocked(mh)
			mh.state = StateRestarting
			mh.mu.Unlock()
		}
	}

	// Restart phase, start order. The first failure aborts the batch.
	for i, member := range members {
		mh, herr := s.handle(member)
		if herr != nil {
			continue
		}
		mh.mu.Lock()
		rerr := s.restartLocked(ctx, mh)
		mh.mu.Unlock()
		if rerr == nil {
			continue
		}
		if len(members) == 1 {
			return rerr
		}
		for _, rest := range members[i+1:] {
			if rh, err := s.handle(rest); err == nil {
				rh.mu.Lock()
				rh.state = StateFailed
				rh.mu.Unlock()
			}
		}
		berr := &BatchError{Strategy: s.opts.Strategy, FailedID: member, Err: rerr}
		s.event(monitoring.SupervisionEvent{
			Kind:     monitoring.RestartLimitExceeded,
			ChildID:  member,
			Error:    berr.Error(),
			Strategy: s.opts.Strategy.String(),
		})
		log.Printf("Strategy batch aborted: %v", berr)
		return berr
	}
	return nil
}

// Shutdown stops every child in reverse start order and rejects any further
// operations. The first stop error is returned after all children have been
// attempted.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shuttingDown {
		s.mu.Unlock()
		return nil
	}
	s.shuttingDown = true
	order := make([]string, len(s.order))
	copy(order, s.order)
	s.mu.Unlock()

	s.StopHealthMonitor()

	var firstErr error
	for i := len(order) - 1; i >= 0; i-- {
		if err := s.stopChildInternal(ctx, order[i]); err != nil && firstErr == nil && !IsNotFound(err) {
			firstErr = err
		}
	}
	log.Printf("Supervisor %s shut down", s.id)
	return firstErr
}

// ChildCount reports the number of supervised children.
func (s *Supervisor) ChildCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.children)
}

// ChildIDs returns the children in start order.
func (s *Supervisor) ChildIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// ChildState reports a child's lifecycle state.
func (s *Supervisor) ChildState(id string) (ChildState, error) {
	h, err := s.handle(id)
	if err != nil {
		return StateCreating, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state, nil
}

// RestartCount reports how many times a child has been restarted over its
// whole life, not just inside the current window.
func (s *Supervisor) RestartCount(id string) (int, error) {
	h, err := s.handle(id)
	if err != nil {
		return 0, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalRestarts, nil
}

// LastHealth reports the most recent health check result for a child.
func (s *Supervisor) LastHealth(id string) (ChildHealth, error) {
	h, err := s.handle(id)
	if err != nil {
		return ChildHealth{}, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.health, nil
}

func (s *Supervisor) handle(id string) (*childHandle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	h, ok := s.children[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return h, nil
}

func (s *Supervisor) removeChild(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.children[id]; !ok {
		return
	}
	delete(s.children, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// strategyMembers returns the children a failure of id pulls into the
// restart, in start order.
func (s *Supervisor) strategyMembers(id string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch s.opts.Strategy {
	case OneForAll:
		out := make([]string, len(s.order))
		copy(out, s.order)
		return out
	case RestForOne:
		for i, oid := range s.order {
			if oid == id {
				out := make([]string, len(s.order)-i)
				copy(out, s.order[i:])
				return out
			}
		}
		return []string{id}
	default:
		return []string{id}
	}
}

// startLocked creates a fresh instance from the factory and starts it.
// Caller holds h.mu.
func (s *Supervisor) startLocked(ctx context.Context, h *childHandle) error {
	spec := h.spec
	h.state = StateStarting
	log.Printf("Starting child %s...", spec.ID)

	child := spec.Factory()
	err := runBounded(ctx, spec.ID, "start", spec.StartTimeout, child.Start)
	if err != nil {
		h.state = StateFailed
		metrics.ChildFailuresTotal.WithLabelValues(spec.ID).Inc()
		var te *TimeoutError
		if !errors.As(err, &te) {
			err = &StartError{ID: spec.ID, Err: err}
		}
		s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildFailed, ChildID: spec.ID, Error: err.Error()})
		log.Printf("Child %s failed to start: %v", spec.ID, err)
		return err
	}

	h.child = child
	h.state = StateRunning
	h.health = Healthy()
	h.failures = 0
	s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildStarted, ChildID: spec.ID})
	return nil
}

// stopLocked stops the running instance with its shutdown policy. Caller
// holds h.mu.
func (s *Supervisor) stopLocked(ctx context.Context, h *childHandle) error {
	spec := h.spec
	h.state = StateStopping
	child := h.child
	if child == nil {
		h.state = StateTerminated
		return nil
	}
	h.child = nil

	if spec.Shutdown.IsImmediate() {
		// No grace: tell the child to stop and move on without waiting.
		go func() {
			defer func() { _ = recover() }()
			_ = child.Stop(context.Background(), 0)
		}()
		h.state = StateTerminated
		s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildStopped, ChildID: spec.ID})
		return nil
	}

	grace, ok := spec.Shutdown.Timeout()
	if !ok {
		// Infinity: bounded only by the spec's shutdown timeout, if any.
		grace = spec.ShutdownTimeout
	}
	err := runBounded(ctx, spec.ID, "stop", grace, func(c context.Context) error {
		return child.Stop(c, grace)
	})
	if err != nil {
		h.state = StateFailed
		var te *TimeoutError
		if !errors.As(err, &te) {
			err = &StopError{ID: spec.ID, Err: err}
		}
		s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildFailed, ChildID: spec.ID, Error: err.Error()})
		log.Printf("Child %s failed to stop: %v", spec.ID, err)
		return err
	}
	h.state = StateTerminated
	s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildStopped, ChildID: spec.ID})
	log.Printf("Stopped child %s", spec.ID)
	return nil
}

// restartLocked runs the restart pipeline. Caller holds h.mu.
func (s *Supervisor) restartLocked(ctx context.Context, h *childHandle) error {
	spec := h.spec

	if h.tracker.IsLimitExceeded() {
		h.state = StateFailed
		rl := &RestartLimitError{ID: spec.ID, MaxRestarts: h.tracker.MaxRestarts(), Window: h.tracker.Window()}
		s.event(monitoring.SupervisionEvent{Kind: monitoring.RestartLimitExceeded, ChildID: spec.ID, Error: rl.Error()})
		log.Printf("Child %s exceeded its restart budget, giving up", spec.ID)
		return rl
	}

	if delay := h.tracker.NextDelay(); delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	h.tracker.RecordRestart()
	h.totalRestarts++
	h.state = StateRestarting
	s.discardInstanceLocked(h)

	if err := s.startLocked(ctx, h); err != nil {
		return err
	}
	metrics.SupervisorRestartsTotal.WithLabelValues(spec.ID).Inc()
	s.event(monitoring.SupervisionEvent{Kind: monitoring.ChildRestarted, ChildID: spec.ID, RestartCount: h.totalRestarts})
	log.Printf("Restarted child %s (restart %d)", spec.ID, h.totalRestarts)
	return nil
}

// discardInstanceLocked detaches the old instance and stops it best-effort
// in the background. Caller holds h.mu.
func (s *Supervisor) discardInstanceLocked(h *childHandle) {
	child := h.child
	if child == nil {
		return
	}
	h.child = nil
	grace, ok := h.spec.Shutdown.Timeout()
	if !ok {
		grace = h.spec.ShutdownTimeout
	}
	go func() {
		defer func() { _ = recover() }()
		_ = child.Stop(context.Background(), grace)
	}()
}

func (s *Supervisor) event(ev monitoring.SupervisionEvent) {
	ev.At = time.Now()
	ev.SupervisorID = s.id
	_ = s.monitor.Record(ev)
}

// runBounded invokes fn, recovering panics and bounding the call by d.
// A timeout abandons the call; the goroutine is left to finish on its own.
func runBounded(ctx context.Context, id, op string, d time.Duration, fn func(context.Context) error) error {
	call := func(c context.Context) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("child %q panicked during %s: %v", id, op, r)
			}
		}()
		return fn(c)
	}

	if d <= 0 {
		return call(ctx)
	}

	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- call(tctx)
	}()
	select {
	case err := <-done:
		return err
	case <-tctx.Done():
		return &TimeoutError{ID: id, Op: op, Timeout: d}
	}
}
