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

package system

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/actor-go/pkg/actor"
	"github.com/turtacn/actor-go/pkg/broker"
	"github.com/turtacn/actor-go/pkg/message"
	"github.com/turtacn/actor-go/pkg/monitoring"
	"github.com/turtacn/actor-go/pkg/supervisor"
)

type job struct {
	name string
}

func (j job) MessageType() string        { return "job" }
func (j job) Priority() message.Priority { return message.PriorityNormal }

// sinkActor forwards every handled payload to a channel.
type sinkActor struct {
	actor.Base[job]
	out chan string
}

func (a *sinkActor) HandleMessage(ctx context.Context, msg job, actx *actor.Context[job]) error {
	a.out <- msg.name
	return nil
}

func sinkFactory(out chan string) func() actor.Actor[job] {
	return func() actor.Actor[job] { return &sinkActor{out: out} }
}

func fastConfig() Config {
	return Config{
		DefaultMailboxCapacity: 16,
		SpawnTimeout:           time.Second,
		ShutdownTimeout:        2 * time.Second,
	}
}

func recvName(t *testing.T, out chan string) string {
	t.Helper()
	select {
	case name := <-out:
		return name
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the actor")
		return ""
	}
}

func TestSpawnAndSend(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	addr, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)
	name, ok := addr.Name()
	require.True(t, ok)
	assert.Equal(t, "worker", name)
	assert.Equal(t, 1, s.ActorCount())

	require.NoError(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "a"})))
	require.NoError(t, s.SendNamed(ctx, "worker", message.NewEnvelope(job{name: "b"})))
	assert.Equal(t, "a", recvName(t, out))
	assert.Equal(t, "b", recvName(t, out))

	resolved, err := s.Resolve("worker")
	require.NoError(t, err)
	assert.Equal(t, addr.ID(), resolved.ID())

	require.NoError(t, s.Shutdown(ctx))
}

func TestSpawnAnonymous(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	addr, err := s.Spawn(ctx, "", sinkFactory(out))
	require.NoError(t, err)
	_, named := addr.Name()
	assert.False(t, named)

	require.NoError(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "x"})))
	assert.Equal(t, "x", recvName(t, out))

	require.NoError(t, s.Shutdown(ctx))
}

func TestSpawnDuplicateName(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	_, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)

	_, err = s.Spawn(ctx, "worker", sinkFactory(out))
	var dup *broker.DuplicateError
	assert.ErrorAs(t, err, &dup)
	assert.Equal(t, 1, s.ActorCount())

	require.NoError(t, s.Shutdown(ctx))
}

func TestActorLimit(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxActors = 2
	s := New[job](cfg)
	ctx := context.Background()
	out := make(chan string, 8)

	_, err := s.Spawn(ctx, "a", sinkFactory(out))
	require.NoError(t, err)
	_, err = s.Spawn(ctx, "b", sinkFactory(out))
	require.NoError(t, err)

	_, err = s.Spawn(ctx, "c", sinkFactory(out))
	var limit *ActorLimitError
	require.ErrorAs(t, err, &limit)
	assert.Equal(t, 2, limit.Max)
	assert.True(t, IsTransient(err))

	// Stopping an actor frees a slot.
	addrA, err := s.Resolve("a")
	require.NoError(t, err)
	require.NoError(t, s.StopActor(ctx, addrA))
	_, err = s.Spawn(ctx, "c", sinkFactory(out))
	assert.NoError(t, err)

	require.NoError(t, s.Shutdown(ctx))
}

func TestStopActor(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	addr, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)
	require.NoError(t, s.StopActor(ctx, addr))
	assert.Equal(t, 0, s.ActorCount())

	err = s.Send(ctx, addr, message.NewEnvelope(job{name: "late"}))
	assert.True(t, broker.IsNotFound(err))

	err = s.StopActor(ctx, addr)
	var nf *supervisor.NotFoundError
	assert.ErrorAs(t, err, &nf)

	require.NoError(t, s.Shutdown(ctx))
}

// A handler error with an ActionRestart verdict flows through the watcher to
// the supervisor, which replaces the runner; the mailbox carries over.
func TestFailedActorIsRestarted(t *testing.T) {
	s := New[job](fastConfig(), WithSupervisorOptions(supervisor.Options{
		Strategy:    supervisor.OneForOne,
		MaxRestarts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}))
	ctx := context.Background()
	out := make(chan string, 8)

	var lives atomic.Int32
	factory := func() actor.Actor[job] {
		life := lives.Add(1)
		return &restartingActor{life: life, out: out}
	}

	addr, err := s.Spawn(ctx, "phoenix", factory)
	require.NoError(t, err)

	require.NoError(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "poison"})))
	assert.Eventually(t, func() bool { return lives.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, s.SendNamed(ctx, "phoenix", message.NewEnvelope(job{name: "hello"})))
	assert.Equal(t, "hello", recvName(t, out))

	require.NoError(t, s.Shutdown(ctx))
}

type restartingActor struct {
	actor.Base[job]
	life int32
	out  chan string
}

func (a *restartingActor) HandleMessage(ctx context.Context, msg job, actx *actor.Context[job]) error {
	if a.life == 1 {
		return errors.New("first life always fails")
	}
	a.out <- msg.name
	return nil
}

func (a *restartingActor) OnError(ctx context.Context, err error, actx *actor.Context[job]) actor.ErrorAction {
	return actor.ActionRestart
}

// A supervisor-driven restart replaces the runner in place. The discarded
// life's clean exit must not tear the fresh one down: the actor stays
// registered, supervised, and reachable.
func TestSupervisorRestartKeepsActorRegistered(t *testing.T) {
	s := New[job](fastConfig(), WithSupervisorOptions(supervisor.Options{
		Strategy:    supervisor.OneForOne,
		MaxRestarts: 5,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Millisecond,
	}))
	ctx := context.Background()
	out := make(chan string, 8)

	_, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)
	require.NoError(t, s.Supervisor().RestartChild(ctx, "worker"))

	// Let the old runner's watcher observe the discarded life's exit.
	time.Sleep(200 * time.Millisecond)

	assert.Equal(t, 1, s.ActorCount())
	state, err := s.Supervisor().ChildState("worker")
	require.NoError(t, err)
	assert.Equal(t, supervisor.StateRunning, state)

	require.NoError(t, s.SendNamed(ctx, "worker", message.NewEnvelope(job{name: "after"})))
	assert.Equal(t, "after", recvName(t, out))

	require.NoError(t, s.Shutdown(ctx))
}

// An ActionStop verdict releases the actor: it leaves the registry and the
// actor count drops.
func TestSelfStoppingActorIsReleased(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()

	addr, err := s.Spawn(ctx, "quitter", func() actor.Actor[job] {
		return &quittingActor{}
	})
	require.NoError(t, err)
	require.NoError(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "bye"})))

	assert.Eventually(t, func() bool { return s.ActorCount() == 0 }, 2*time.Second, 5*time.Millisecond)
	_, err = s.Resolve("quitter")
	assert.True(t, broker.IsNotFound(err))

	require.NoError(t, s.Shutdown(ctx))
}

type quittingActor struct {
	actor.Base[job]
}

func (a *quittingActor) HandleMessage(ctx context.Context, msg job, actx *actor.Context[job]) error {
	return errors.New("done here")
}

func TestRequestReply(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()

	addr, err := s.Spawn(ctx, "echo", func() actor.Actor[job] {
		return &echoActor{}
	})
	require.NoError(t, err)

	reply, err := s.Request(ctx, addr, message.NewEnvelope(job{name: "ping"}), time.Second)
	require.NoError(t, err)
	assert.Equal(t, "ping-echo", reply.Payload.name)

	require.NoError(t, s.Shutdown(ctx))
}

type echoActor struct {
	actor.Base[job]
}

func (a *echoActor) HandleMessage(ctx context.Context, msg job, actx *actor.Context[job]) error {
	reply := message.NewEnvelope(job{name: msg.name + "-echo"})
	return actx.Reply(actx.Envelope(), reply)
}

func TestShutdownRejectsOperations(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	addr, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)
	require.NoError(t, s.Shutdown(ctx))
	assert.Equal(t, 0, s.ActorCount())

	_, err = s.Spawn(ctx, "late", sinkFactory(out))
	assert.ErrorIs(t, err, ErrShuttingDown)
	assert.True(t, IsFatal(err))
	assert.ErrorIs(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "x"})), ErrShuttingDown)
	assert.ErrorIs(t, s.StopActor(ctx, addr), ErrShuttingDown)
	assert.ErrorIs(t, s.Shutdown(ctx), ErrShuttingDown)
}

// An actor stuck in its handler outlives the graceful window; shutdown forces
// it down and reports the overrun.
func TestShutdownTimeoutForcesRemainder(t *testing.T) {
	cfg := fastConfig()
	cfg.ShutdownTimeout = 50 * time.Millisecond
	s := New[job](cfg)
	ctx := context.Background()

	entered := make(chan struct{}, 1)
	addr, err := s.Spawn(ctx, "sleeper", func() actor.Actor[job] {
		return &sleepyActor{entered: entered, nap: 300 * time.Millisecond}
	}, WithShutdownPolicy(supervisor.ShutdownGraceful(10*time.Second)))
	require.NoError(t, err)

	require.NoError(t, s.Send(ctx, addr, message.NewEnvelope(job{name: "zzz"})))
	<-entered

	err = s.Shutdown(ctx)
	var overrun *ShutdownTimeoutError
	require.ErrorAs(t, err, &overrun)
	assert.Equal(t, 1, overrun.Remaining)
	assert.True(t, IsFatal(err))
}

type sleepyActor struct {
	actor.Base[job]
	entered chan struct{}
	nap     time.Duration
}

func (a *sleepyActor) HandleMessage(ctx context.Context, msg job, actx *actor.Context[job]) error {
	a.entered <- struct{}{}
	time.Sleep(a.nap)
	return nil
}

func TestForceShutdown(t *testing.T) {
	s := New[job](fastConfig())
	ctx := context.Background()
	out := make(chan string, 8)

	_, err := s.Spawn(ctx, "a", sinkFactory(out))
	require.NoError(t, err)
	_, err = s.Spawn(ctx, "b", sinkFactory(out))
	require.NoError(t, err)

	require.NoError(t, s.ForceShutdown(ctx))
	assert.Equal(t, 0, s.ActorCount())
	assert.ErrorIs(t, s.ForceShutdown(ctx), ErrShuttingDown)
}

func TestSystemEventsRecorded(t *testing.T) {
	mon := monitoring.NewInMemory[monitoring.SystemEvent](monitoring.Config{
		Enabled:        true,
		MaxHistorySize: 64,
		SeverityFilter: monitoring.SeverityTrace,
	})
	s := New[job](fastConfig(), WithMonitor(mon))
	ctx := context.Background()
	out := make(chan string, 8)

	_, err := s.Spawn(ctx, "worker", sinkFactory(out))
	require.NoError(t, err)
	require.NoError(t, s.Shutdown(ctx))

	snap, err := mon.Snapshot()
	require.NoError(t, err)
	kinds := make(map[monitoring.SystemEventKind]int)
	for _, ev := range snap.RecentEvents {
		kinds[ev.Kind]++
	}
	assert.Equal(t, 1, kinds[monitoring.SystemStarted])
	assert.Equal(t, 1, kinds[monitoring.ActorSpawned])
	assert.Equal(t, 1, kinds[monitoring.ShutdownInitiated])
	assert.Equal(t, 1, kinds[monitoring.ShutdownCompleted])
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, Config{MaxActors: -1}.Validate())
	assert.Error(t, Config{SpawnTimeout: -time.Second}.Validate())

	cfg := Config{}.withDefaults()
	assert.Equal(t, DefaultMailboxCapacity, cfg.DefaultMailboxCapacity)
	assert.Equal(t, DefaultSpawnTimeout, cfg.SpawnTimeout)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.MaxActors)
}

func TestErrorClassification(t *testing.T) {
	limit := &ActorLimitError{Max: 10}
	assert.True(t, IsTransient(limit))
	assert.False(t, IsFatal(limit))

	spawn := &SpawnError{Name: "w", Err: errors.New("boom")}
	assert.True(t, IsRecoverable(spawn))
	assert.False(t, IsTransient(spawn))

	assert.True(t, IsFatal(ErrShuttingDown))
	assert.False(t, IsRecoverable(&SpawnError{Name: "w", Err: ErrShuttingDown}))
}
