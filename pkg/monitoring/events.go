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

package monitoring

import "time"

// SupervisionEventKind identifies what happened to a supervised child.
type SupervisionEventKind int

const (
	ChildStarted SupervisionEventKind = iota
	ChildStopped
	ChildRestarted
	ChildFailed
	RestartLimitExceeded
	StrategyApplied
	HealthCheckFailed
)

// SupervisionEvent describes a supervisor decision or child transition.
// Fields that do not apply to a kind are left zero.
type SupervisionEvent struct {
	At            time.Time
	SupervisorID  string
	ChildID       string
	Kind          SupervisionEventKind
	Error         string
	RestartCount  int
	Strategy      string
	AffectedCount int
}

func (e SupervisionEvent) EventType() string { return "supervision" }

func (e SupervisionEvent) Timestamp() time.Time { return e.At }

func (e SupervisionEvent) Severity() Severity {
	switch e.Kind {
	case ChildFailed:
		return SeverityError
	case RestartLimitExceeded:
		return SeverityCritical
	case ChildRestarted, StrategyApplied, HealthCheckFailed:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}

// ActorEventKind identifies actor lifecycle transitions.
type ActorEventKind int

const (
	ActorStarted ActorEventKind = iota
	ActorStopped
	ActorHandlerFailed
	ActorStateChanged
)

// ActorEvent describes a lifecycle transition of a single actor.
type ActorEvent struct {
	At      time.Time
	ActorID string
	Kind    ActorEventKind
	Error   string
	State   string
}

func (e ActorEvent) EventType() string { return "actor" }

func (e ActorEvent) Timestamp() time.Time { return e.At }

func (e ActorEvent) Severity() Severity {
	switch e.Kind {
	case ActorHandlerFailed:
		return SeverityError
	case ActorStateChanged:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

// MailboxEventKind identifies notable mailbox conditions.
type MailboxEventKind int

const (
	MessageDropped MailboxEventKind = iota
	MessageExpired
	BackpressureApplied
	MailboxClosed
)

// MailboxEvent describes a drop, expiry, or closure on one mailbox.
type MailboxEvent struct {
	At      time.Time
	ActorID string
	Kind    MailboxEventKind
	Queued  int
}

func (e MailboxEvent) EventType() string { return "mailbox" }

func (e MailboxEvent) Timestamp() time.Time { return e.At }

func (e MailboxEvent) Severity() Severity {
	switch e.Kind {
	case MessageDropped, BackpressureApplied:
		return SeverityWarning
	case MessageExpired:
		return SeverityDebug
	default:
		return SeverityInfo
	}
}

// BrokerEventKind identifies broker traffic and subscription changes.
type BrokerEventKind int

const (
	MessagePublished BrokerEventKind = iota
	MessageDelivered
	DeliveryDropped
	SubscriberAdded
	SubscriberRemoved
	RequestTimedOut
)

// BrokerEvent describes fanout and registry activity.
type BrokerEvent struct {
	At          time.Time
	Kind        BrokerEventKind
	Address     string
	MessageType string
	Subscribers int
}

func (e BrokerEvent) EventType() string { return "broker" }

func (e BrokerEvent) Timestamp() time.Time { return e.At }

func (e BrokerEvent) Severity() Severity {
	switch e.Kind {
	case DeliveryDropped, RequestTimedOut:
		return SeverityWarning
	case MessagePublished, MessageDelivered:
		return SeverityTrace
	default:
		return SeverityDebug
	}
}

// SystemEventKind identifies actor-system level transitions.
type SystemEventKind int

const (
	SystemStarted SystemEventKind = iota
	ActorSpawned
	ActorLimitReached
	ShutdownInitiated
	ShutdownCompleted
	ShutdownForced
)

// SystemEvent describes a system-wide transition.
type SystemEvent struct {
	At         time.Time
	Kind       SystemEventKind
	ActorID    string
	ActorCount int
	Error      string
}

func (e SystemEvent) EventType() string { return "system" }

func (e SystemEvent) Timestamp() time.Time { return e.At }

func (e SystemEvent) Severity() Severity {
	switch e.Kind {
	case ActorLimitReached, ShutdownForced:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
