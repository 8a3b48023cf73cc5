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
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/turtacn/actor-go/pkg/mailbox"
	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/monitoring"
	"github.com/turtacn/actor-go/pkg/supervisor"
)

// ErrAlreadyStarted is returned by a second Start on the same Runner.
var ErrAlreadyStarted = errors.New("runner already started")

// RunnerOption configures a Runner.
type RunnerOption func(*runnerOptions)

type runnerOptions struct {
	monitor monitoring.Monitor[monitoring.ActorEvent]
}

// WithMonitor wires a monitor that receives the runner's actor events.
func WithMonitor(m monitoring.Monitor[monitoring.ActorEvent]) RunnerOption {
	return func(o *runnerOptions) { o.monitor = m }
}

// Runner drives an actor's message loop over its mailbox and adapts the pair
// into a supervisable child: Start spawns the loop, Stop winds it down, and
// HealthCheck reflects whether the loop is alive.
//
// A Runner is single-use. Supervisor restarts create a fresh Runner from the
// child factory; the mailbox outlives the runner, so queued messages survive
// a restart.
type Runner[M message.Message] struct {
	actor     Actor[M]
	mb        mailbox.Mailbox[M]
	actx      *Context[M]
	monitor   monitoring.Monitor[monitoring.ActorEvent]
	lifecycle *Lifecycle

	mu            sync.Mutex
	started       bool
	stopRequested bool
	cancel        context.CancelFunc
	termErr       error
	done          chan struct{}
	doneOnce      sync.Once
	stopOnce      sync.Once
}

// NewRunner pairs an actor with its mailbox and context.
func NewRunner[M message.Message](a Actor[M], mb mailbox.Mailbox[M], actx *Context[M], opts ...RunnerOption) *Runner[M] {
	o := runnerOptions{monitor: monitoring.NewNoop[monitoring.ActorEvent]()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Runner[M]{
		actor:     a,
		mb:        mb,
		actx:      actx,
		monitor:   o.monitor,
		lifecycle: NewLifecycle(),
		done:      make(chan struct{}),
	}
}

// Start runs PreStart and spawns the message loop. It returns once the loop
// is running.
func (r *Runner[M]) Start(ctx context.Context) error {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return ErrAlreadyStarted
	}
	r.started = true
	r.mu.Unlock()

	r.lifecycle.TransitionTo(StateStarting)
	if err := r.actor.PreStart(ctx, r.actx); err != nil {
		r.lifecycle.TransitionTo(StateFailed)
		r.event(monitoring.ActorEvent{Kind: monitoring.ActorHandlerFailed, Error: err.Error()})
		r.setTermErr(err)
		r.closeDone()
		return fmt.Errorf("pre-start: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	r.lifecycle.TransitionTo(StateRunning)
	r.event(monitoring.ActorEvent{Kind: monitoring.ActorStarted})
	go r.loop(runCtx)
	return nil
}

// Stop cancels the loop, waits up to timeout for it to drain, then runs
// PostStop. Zero timeout waits as long as ctx allows.
func (r *Runner[M]) Stop(ctx context.Context, timeout time.Duration) error {
	r.mu.Lock()
	r.stopRequested = true
	started := r.started
	cancel := r.cancel
	r.mu.Unlock()
	if !started {
		r.closeDone()
		r.lifecycle.TransitionTo(StateStopped)
		return nil
	}

	r.lifecycle.TransitionTo(StateStopping)
	if cancel != nil {
		cancel()
	}

	var waitErr error
	if timeout > 0 {
		select {
		case <-r.done:
		case <-time.After(timeout):
			waitErr = fmt.Errorf("actor %s did not stop within %v", r.actx.Self(), timeout)
		}
	} else {
		select {
		case <-r.done:
		case <-ctx.Done():
			waitErr = ctx.Err()
		}
	}

	r.runPostStop(ctx)
	r.lifecycle.TransitionTo(StateStopped)
	return waitErr
}

// HealthCheck reports Healthy while the loop runs and Failed otherwise.
func (r *Runner[M]) HealthCheck(ctx context.Context) supervisor.ChildHealth {
	state := r.lifecycle.State()
	if state == StateRunning {
		return supervisor.Healthy()
	}
	return supervisor.Failed("actor is " + state.String())
}

// Done is closed when the message loop has exited, or immediately when the
// start was aborted. It is valid to wait on before Start.
func (r *Runner[M]) Done() <-chan struct{} {
	return r.done
}

// Err returns the loop's terminal error: nil for a clean exit, the handler
// error when the actor asked for a restart or escalation.
func (r *Runner[M]) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.termErr
}

// StopRequested reports whether Stop has been called. It lets an observer of
// Done distinguish an actor stopping itself from one being stopped by its
// supervisor.
func (r *Runner[M]) StopRequested() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stopRequested
}

// State exposes the runner's lifecycle state.
func (r *Runner[M]) State() State {
	return r.lifecycle.State()
}

// Mailbox returns the mailbox the loop receives from.
func (r *Runner[M]) Mailbox() mailbox.Mailbox[M] {
	return r.mb
}

func (r *Runner[M]) loop(ctx context.Context) {
	defer r.closeDone()
	for {
		env, err := r.mb.Receive(ctx)
		if err != nil {
			// Cancellation or mailbox closure is a clean exit.
			r.finish(nil)
			return
		}

		herr := r.handleOne(ctx, env)
		if herr == nil {
			continue
		}

		action := r.actor.OnError(ctx, herr, r.actx)
		r.event(monitoring.ActorEvent{Kind: monitoring.ActorHandlerFailed, Error: herr.Error()})
		log.Printf("Actor %s handler error (%s): %v", r.actx.Self(), action, herr)

		switch action {
		case ActionResume:
			continue
		case ActionStop:
			r.finish(nil)
			return
		default: // ActionRestart, ActionEscalate
			r.finish(herr)
			return
		}
	}
}

func (r *Runner[M]) handleOne(ctx context.Context, env message.Envelope[M]) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panicked: %v", rec)
		}
	}()
	r.actx.setEnvelope(env)
	return r.actor.HandleMessage(ctx, env.Payload, r.actx)
}

func (r *Runner[M]) setTermErr(err error) {
	r.mu.Lock()
	r.termErr = err
	r.mu.Unlock()
}

func (r *Runner[M]) closeDone() {
	r.doneOnce.Do(func() { close(r.done) })
}

func (r *Runner[M]) finish(err error) {
	r.setTermErr(err)
	if err != nil {
		r.lifecycle.TransitionTo(StateFailed)
	} else if !r.lifecycle.State().IsTerminal() && r.lifecycle.State() != StateStopping {
		r.lifecycle.TransitionTo(StateStopped)
	}
	r.runPostStop(context.Background())
}

// runPostStop runs the actor's PostStop hook exactly once, no matter which
// side (the loop's exit or an explicit Stop) gets there first.
func (r *Runner[M]) runPostStop(ctx context.Context) {
	r.stopOnce.Do(func() {
		if err := r.actor.PostStop(ctx, r.actx); err != nil {
			log.Printf("Actor %s post-stop failed: %v", r.actx.Self(), err)
		}
		r.event(monitoring.ActorEvent{Kind: monitoring.ActorStopped})
	})
}

func (r *Runner[M]) event(ev monitoring.ActorEvent) {
	ev.At = time.Now()
	ev.ActorID = r.actx.Self().String()
	ev.State = r.lifecycle.State().String()
	_ = r.monitor.Record(ev)
}
