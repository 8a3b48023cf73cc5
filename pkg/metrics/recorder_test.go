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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/actor-go/pkg/mailbox"
)

func TestMailboxRecorderCounts(t *testing.T) {
	var _ mailbox.MetricsRecorder = (*MailboxRecorder)(nil)

	r := NewMailboxRecorder()
	r.RecordSent()
	r.RecordSent()
	r.RecordReceived()
	r.RecordDropped()

	assert.Equal(t, uint64(2), r.SentCount())
	assert.Equal(t, uint64(1), r.ReceivedCount())
	assert.Equal(t, uint64(1), r.DroppedCount())
	assert.Equal(t, uint64(1), r.InFlight())

	at, ok := r.LastMessageAt()
	assert.True(t, ok)
	assert.WithinDuration(t, time.Now(), at, time.Second)
}
