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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRestartPolicyTruthTable(t *testing.T) {
	cases := []struct {
		policy   RestartPolicy
		wasError bool
		want     bool
	}{
		{RestartPermanent, true, true},
		{RestartPermanent, false, true},
		{RestartTransient, true, true},
		{RestartTransient, false, false},
		{RestartTemporary, true, false},
		{RestartTemporary, false, false},
	}
	for _, c := range cases {
		assert.Equalf(t, c.want, c.policy.ShouldRestart(c.wasError),
			"%s with wasError=%v", c.policy, c.wasError)
	}
}

func TestShutdownPolicyTimeout(t *testing.T) {
	d, ok := ShutdownGraceful(5 * time.Second).Timeout()
	assert.True(t, ok)
	assert.Equal(t, 5*time.Second, d)

	d, ok = ShutdownImmediate().Timeout()
	assert.True(t, ok)
	assert.Zero(t, d)
	assert.True(t, ShutdownImmediate().IsImmediate())

	_, ok = ShutdownInfinity().Timeout()
	assert.False(t, ok)
	assert.False(t, ShutdownInfinity().IsImmediate())
}

func TestPolicyStrings(t *testing.T) {
	assert.Equal(t, "permanent", RestartPermanent.String())
	assert.Equal(t, "transient", RestartTransient.String())
	assert.Equal(t, "temporary", RestartTemporary.String())
	assert.Equal(t, "one_for_one", OneForOne.String())
	assert.Equal(t, "one_for_all", OneForAll.String())
	assert.Equal(t, "rest_for_one", RestForOne.String())
	assert.Equal(t, "graceful(1s)", ShutdownGraceful(time.Second).String())
	assert.Equal(t, "immediate", ShutdownImmediate().String())
	assert.Equal(t, "infinity", ShutdownInfinity().String())
}

func TestChildStatePredicates(t *testing.T) {
	assert.True(t, StateTerminated.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateRunning.IsTerminal())
	assert.True(t, StateRunning.IsRunning())
	assert.False(t, StateRestarting.IsRunning())
	assert.Equal(t, "running", StateRunning.String())
}

func TestChildHealthConstructors(t *testing.T) {
	assert.True(t, Healthy().IsHealthy())
	assert.False(t, Healthy().IsFailed())

	d := Degraded("slow")
	assert.False(t, d.IsHealthy())
	assert.False(t, d.IsFailed())
	assert.Equal(t, "degraded: slow", d.String())

	f := Failed("dead")
	assert.True(t, f.IsFailed())
	assert.Equal(t, "failed: dead", f.String())
}

func TestChildSpecValidate(t *testing.T) {
	assert.Error(t, ChildSpec{}.Validate())
	assert.Error(t, ChildSpec{ID: "x"}.Validate())
	assert.NoError(t, ChildSpec{ID: "x", Factory: func() Child { return nil }}.Validate())
}
