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

package metrics

import (
	"time"

	"github.com/turtacn/actor-go/pkg/mailbox"
)

// MailboxRecorder is a mailbox.MetricsRecorder that mirrors drops into the
// process-wide Prometheus counter while keeping the per-mailbox atomic
// counts.
type MailboxRecorder struct {
	inner *mailbox.AtomicMetrics
}

// NewMailboxRecorder returns a recorder wired to MailboxDroppedTotal.
func NewMailboxRecorder() *MailboxRecorder {
	return &MailboxRecorder{inner: mailbox.NewAtomicMetrics()}
}

func (r *MailboxRecorder) RecordSent() {
	r.inner.RecordSent()
}

func (r *MailboxRecorder) RecordReceived() {
	r.inner.RecordReceived()
}

func (r *MailboxRecorder) RecordDropped() {
	r.inner.RecordDropped()
	MailboxDroppedTotal.Inc()
}

func (r *MailboxRecorder) SentCount() uint64 {
	return r.inner.SentCount()
}

func (r *MailboxRecorder) ReceivedCount() uint64 {
	return r.inner.ReceivedCount()
}

func (r *MailboxRecorder) DroppedCount() uint64 {
	return r.inner.DroppedCount()
}

func (r *MailboxRecorder) InFlight() uint64 {
	return r.inner.InFlight()
}

func (r *MailboxRecorder) LastMessageAt() (time.Time, bool) {
	return r.inner.LastMessageAt()
}
