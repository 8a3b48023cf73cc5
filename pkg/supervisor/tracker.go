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
	"sync"
	"time"
)

const (
	// DefaultMaxRestarts is the restart budget inside one window.
	DefaultMaxRestarts = 5
	// DefaultRestartWindow is the sliding window length.
	DefaultRestartWindow = 60 * time.Second
	// DefaultBaseDelay is the first backoff delay.
	DefaultBaseDelay = 100 * time.Millisecond
	// DefaultMaxDelay caps the backoff delay.
	DefaultMaxDelay = 60 * time.Second

	// maxBackoffShift caps the exponent so the doubling cannot overflow.
	maxBackoffShift = 10
)

// RestartTracker rate-limits restarts with a sliding window and computes the
// exponential backoff delay. Restart timestamps older than the window are
// pruned lazily on every read, so an idle child naturally regains its full
// budget.
type RestartTracker struct {
	mu          sync.Mutex
	maxRestarts int
	window      time.Duration
	baseDelay   time.Duration
	maxDelay    time.Duration
	restarts    []time.Time

	// now is replaceable for deterministic tests.
	now func() time.Time
}

// NewRestartTracker creates a tracker with the default backoff delays.
// Non-positive arguments fall back to the defaults.
func NewRestartTracker(maxRestarts int, window time.Duration) *RestartTracker {
	return NewRestartTrackerWithBackoff(maxRestarts, window, DefaultBaseDelay, DefaultMaxDelay)
}

// NewRestartTrackerWithBackoff also sets the backoff delays.
func NewRestartTrackerWithBackoff(maxRestarts int, window, baseDelay, maxDelay time.Duration) *RestartTracker {
	if maxRestarts <= 0 {
		maxRestarts = DefaultMaxRestarts
	}
	if window <= 0 {
		window = DefaultRestartWindow
	}
	if baseDelay <= 0 {
		baseDelay = DefaultBaseDelay
	}
	if maxDelay <= 0 {
		maxDelay = DefaultMaxDelay
	}
	return &RestartTracker{
		maxRestarts: maxRestarts,
		window:      window,
		baseDelay:   baseDelay,
		maxDelay:    maxDelay,
		now:         time.Now,
	}
}

// IsLimitExceeded reports whether the window budget is used up.
func (t *RestartTracker) IsLimitExceeded() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	return len(t.restarts) >= t.maxRestarts
}

// RecordRestart adds a restart at the current time.
func (t *RestartTracker) RecordRestart() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	t.restarts = append(t.restarts, t.now())
}

// Count reports how many restarts remain inside the window.
func (t *RestartTracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()
	return len(t.restarts)
}

// NextDelay is the backoff before the next restart attempt:
// base*2^min(count, 10), capped at the max delay.
func (t *RestartTracker) NextDelay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pruneLocked()

	shift := len(t.restarts)
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	delay := t.baseDelay << uint(shift)
	if delay > t.maxDelay || delay <= 0 {
		delay = t.maxDelay
	}
	return delay
}

// Reset forgets all recorded restarts.
func (t *RestartTracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.restarts = t.restarts[:0]
}

// MaxRestarts returns the window budget.
func (t *RestartTracker) MaxRestarts() int {
	return t.maxRestarts
}

// Window returns the sliding window length.
func (t *RestartTracker) Window() time.Duration {
	return t.window
}

func (t *RestartTracker) pruneLocked() {
	cutoff := t.now().Add(-t.window)
	i := 0
	for i < len(t.restarts) && !t.restarts[i].After(cutoff) {
		i++
	}
	if i > 0 {
		t.restarts = append(t.restarts[:0], t.restarts[i:]...)
	}
}
