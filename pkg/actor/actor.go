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

// Package actor defines the actor programming contract and the Runner that
// drives an actor's message loop over a mailbox. An actor processes one
// message at a time; the runtime never calls HandleMessage concurrently for
// the same actor.
package actor

import (
	"context"

	"github.com/turtacn/actor-go/pkg/message"
)

// ErrorAction is an actor's verdict on one of its own handler errors.
type ErrorAction int

const (
	// ActionStop terminates the actor cleanly. This is the default.
	ActionStop ErrorAction = iota
	// ActionResume skips the failed message and continues with the next.
	ActionResume
	// ActionRestart terminates the actor with an error so its supervisor
	// restarts it.
	ActionRestart
	// ActionEscalate terminates with an error and leaves the decision to
	// the layer above.
	ActionEscalate
)

// String returns the action name for logs.
func (a ErrorAction) String() string {
	switch a {
	case ActionStop:
		return "stop"
	case ActionResume:
		return "resume"
	case ActionRestart:
		return "restart"
	case ActionEscalate:
		return "escalate"
	default:
		return "unknown"
	}
}

// Actor is the behavior contract. Implementations embed Base to pick up the
// default lifecycle hooks and only override what they need.
type Actor[M message.Message] interface {
	// HandleMessage processes one message. Returning an error consults
	// OnError for the verdict.
	HandleMessage(ctx context.Context, msg M, actx *Context[M]) error

	// PreStart runs before the first message. An error aborts the start.
	PreStart(ctx context.Context, actx *Context[M]) error

	// PostStop runs after the message loop has exited, on every
	// termination path.
	PostStop(ctx context.Context, actx *Context[M]) error

	// OnError decides what a handler error means for the actor.
	OnError(ctx context.Context, err error, actx *Context[M]) ErrorAction
}

// Base provides the default hooks: no-op PreStart/PostStop and a Stop
// verdict on every error. Embed it and override selectively.
type Base[M message.Message] struct{}

func (Base[M]) PreStart(ctx context.Context, actx *Context[M]) error {
	return nil
}

func (Base[M]) PostStop(ctx context.Context, actx *Context[M]) error {
	return nil
}

func (Base[M]) OnError(ctx context.Context, err error, actx *Context[M]) ErrorAction {
	return ActionStop
}
