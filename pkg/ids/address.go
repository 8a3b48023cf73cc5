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

import "fmt"

// ActorAddress is an immutable routing address for an actor. A named address
// can be looked up by name in a registry; an anonymous address is only
// reachable through its ID. Addresses are comparable and safe to use as map
// keys.
type ActorAddress struct {
	id   ActorID
	name string
}

// NewNamedAddress creates an address reachable by the given name.
func NewNamedAddress(name string) ActorAddress {
	return ActorAddress{id: NewActorID(), name: name}
}

// NewAnonymousAddress creates an address with no name.
func NewAnonymousAddress() ActorAddress {
	return ActorAddress{id: NewActorID()}
}

// ID returns the actor ID behind the address.
func (a ActorAddress) ID() ActorID {
	return a.id
}

// Name returns the registered name and whether the address is named.
func (a ActorAddress) Name() (string, bool) {
	return a.name, a.name != ""
}

// IsNamed reports whether the address carries a name.
func (a ActorAddress) IsNamed() bool {
	return a.name != ""
}

// IsZero reports whether the address is the zero value.
func (a ActorAddress) IsZero() bool {
	return a.id.IsZero()
}

// String renders the address for logs.
func (a ActorAddress) String() string {
	if a.name != "" {
		return fmt.Sprintf("%s(%s)", a.name, a.id)
	}
	return fmt.Sprintf("anonymous(%s)", a.id)
}
