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

package ids

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorIDUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := NewActorID()
		assert.False(t, id.IsZero())
		assert.False(t, seen[id.String()], "duplicate actor id generated")
		seen[id.String()] = true
	}
}

func TestMessageIDUniqueness(t *testing.T) {
	a := NewMessageID()
	b := NewMessageID()
	assert.NotEqual(t, a, b)
	assert.False(t, a.IsZero())
}

func TestZeroValues(t *testing.T) {
	var id ActorID
	assert.True(t, id.IsZero())

	var mid MessageID
	assert.True(t, mid.IsZero())

	var addr ActorAddress
	assert.True(t, addr.IsZero())
}

func TestNamedAddress(t *testing.T) {
	addr := NewNamedAddress("worker-1")
	assert.True(t, addr.IsNamed())

	name, ok := addr.Name()
	assert.True(t, ok)
	assert.Equal(t, "worker-1", name)
	assert.Contains(t, addr.String(), "worker-1")
	assert.False(t, addr.ID().IsZero())
}

func TestAnonymousAddress(t *testing.T) {
	addr := NewAnonymousAddress()
	assert.False(t, addr.IsNamed())

	name, ok := addr.Name()
	assert.False(t, ok)
	assert.Empty(t, name)
	assert.Contains(t, addr.String(), "anonymous")
}

func TestAddressComparable(t *testing.T) {
	a := NewNamedAddress("same")
	b := NewNamedAddress("same")
	// Same name, different identity.
	assert.NotEqual(t, a, b)

	m := map[ActorAddress]int{a: 1, b: 2}
	assert.Equal(t, 1, m[a])
	assert.Equal(t, 2, m[b])
}
