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

import (
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// Event is implemented by every event type a monitor can record.
type Event interface {
	EventType() string
	Timestamp() time.Time
	Severity() Severity
}

// Monitor records events of one event family. Implementations must be safe
// for concurrent use.
type Monitor[E Event] interface {
	Record(event E) error
	Snapshot() (Snapshot[E], error)
	Reset() error
}

// Snapshot is a point-in-time copy of a monitor's state. RecentEvents is
// ordered oldest first.
type Snapshot[E Event] struct {
	Timestamp       time.Time
	TotalEvents     uint64
	CountBySeverity map[Severity]uint64
	RecentEvents    []E
}

// Config controls what a monitor keeps.
type Config struct {
	// Enabled turns recording on. A disabled monitor accepts events and
	// discards them.
	Enabled bool

	// MaxHistorySize bounds the retained event history. When the history is
	// full the oldest event is evicted.
	MaxHistorySize int

	// SeverityFilter drops events below this severity.
	SeverityFilter Severity
}

// DefaultConfig enables recording at Info and above with a 1000-event
// history.
func DefaultConfig() Config {
	return Config{
		Enabled:        true,
		MaxHistorySize: 1000,
		SeverityFilter: SeverityInfo,
	}
}

// Validate rejects configurations a monitor cannot honor.
func (c Config) Validate() error {
	if c.MaxHistorySize < 1 {
		return errors.New("monitoring: max history size must be at least 1")
	}
	if !c.SeverityFilter.valid() {
		return errors.New("monitoring: invalid severity filter")
	}
	return nil
}

// InMemory is the standard monitor: atomic severity counters plus a
// fixed-capacity ring of recent events.
type InMemory[E Event] struct {
	config Config

	total    atomic.Uint64
	counters [numSeverities]atomic.Uint64

	mu    sync.Mutex
	ring  []E
	head  int
	count int
}

// NewInMemory creates a monitor with the given config. Invalid configs fall
// back to the defaults.
func NewInMemory[E Event](config Config) *InMemory[E] {
	if err := config.Validate(); err != nil {
		config = DefaultConfig()
	}
	return &InMemory[E]{
		config: config,
		ring:   make([]E, config.MaxHistorySize),
	}
}

// Record counts the event and appends it to the history, evicting the oldest
// entry when full. Events below the severity filter are ignored.
func (m *InMemory[E]) Record(event E) error {
	if !m.config.Enabled {
		return nil
	}
	sev := event.Severity()
	if sev < m.config.SeverityFilter {
		return nil
	}
	m.total.Add(1)
	if sev.valid() {
		m.counters[sev].Add(1)
	}

	m.mu.Lock()
	idx := (m.head + m.count) % len(m.ring)
	m.ring[idx] = event
	if m.count < len(m.ring) {
		m.count++
	} else {
		m.head = (m.head + 1) % len(m.ring)
	}
	m.mu.Unlock()
	return nil
}

// Snapshot copies counters and history.
func (m *InMemory[E]) Snapshot() (Snapshot[E], error) {
	counts := make(map[Severity]uint64, numSeverities)
	for s := 0; s < numSeverities; s++ {
		if v := m.counters[s].Load(); v > 0 {
			counts[Severity(s)] = v
		}
	}

	m.mu.Lock()
	events := make([]E, 0, m.count)
	for i := 0; i < m.count; i++ {
		events = append(events, m.ring[(m.head+i)%len(m.ring)])
	}
	m.mu.Unlock()

	return Snapshot[E]{
		Timestamp:       time.Now(),
		TotalEvents:     m.total.Load(),
		CountBySeverity: counts,
		RecentEvents:    events,
	}, nil
}

// Reset clears counters and history.
func (m *InMemory[E]) Reset() error {
	m.mu.Lock()
	var zero E
	for i := range m.ring {
		m.ring[i] = zero
	}
	m.head = 0
	m.count = 0
	m.mu.Unlock()

	m.total.Store(0)
	for s := 0; s < numSeverities; s++ {
		m.counters[s].Store(0)
	}
	return nil
}

// Noop discards everything. Useful as a default when callers do not care
// about events.
type Noop[E Event] struct{}

// NewNoop returns a monitor that records nothing.
func NewNoop[E Event]() Noop[E] {
	return Noop[E]{}
}

func (Noop[E]) Record(E) error {
	return nil
}

func (n Noop[E]) Snapshot() (Snapshot[E], error) {
	return Snapshot[E]{
		Timestamp:       time.Now(),
		CountBySeverity: map[Severity]uint64{},
		RecentEvents:    []E{},
	}, nil
}

func (Noop[E]) Reset() error {
	return nil
}
