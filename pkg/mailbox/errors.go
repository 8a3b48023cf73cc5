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

package mailbox

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when sending to or receiving from a closed
	// mailbox.
	ErrClosed = errors.New("mailbox is closed")

	// ErrEmpty is returned by TryReceive when nothing is queued.
	ErrEmpty = errors.New("mailbox is empty")

	// ErrFull is the sentinel wrapped by FullError; match with errors.Is.
	ErrFull = errors.New("mailbox is full")
)

// FullError reports a rejected send on a full bounded mailbox.
type FullError struct {
	Capacity int
}

func (e *FullError) Error() string {
	return fmt.Sprintf("mailbox is full (capacity %d)", e.Capacity)
}

func (e *FullError) Unwrap() error {
	return ErrFull
}

// IsFull reports whether err indicates a full mailbox.
func IsFull(err error) bool {
	return errors.Is(err, ErrFull)
}

// IsClosed reports whether err indicates a closed mailbox.
func IsClosed(err error) bool {
	return errors.Is(err, ErrClosed)
}
