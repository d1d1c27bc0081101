// Copyright 2025 walteh LLC
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


// Package registry keeps long-running operation handles addressable by an ID
// that cannot be confused with an older handle after its slot is reused.
//
// An ID is a slot index plus a nonce. Slots are handed out lowest-free-first;
// Cleanup frees the slots of terminated handles, and the nonce drawn for every
// new handle is strictly greater than any nonce drawn before it. A lookup with
// an ID whose nonce does not match the slot's current occupant finds nothing.
package registry

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

var ErrMalformedID = errors.Base("malformed session id")

// 🔑 ID addresses one handle
type ID struct {
	Slot  int64 `json:"slot"`
	Nonce int64 `json:"nonce,string"`
}

func (id ID) String() string {
	return fmt.Sprintf("%d:%d", id.Slot, id.Nonce)
}

// ParseID reverses ID.String.
func ParseID(s string) (ID, error) {
	slot, nonce, ok := strings.Cut(s, ":")
	if !ok {
		return ID{}, errors.Errorf("%w: %q", ErrMalformedID, s)
	}
	return ParseParts(slot, nonce)
}

// ParseParts parses the two halves of an ID separately, as they arrive in
// URL paths.
func ParseParts(slot, nonce string) (ID, error) {
	s, err := strconv.ParseInt(slot, 10, 64)
	if err != nil || s < 0 {
		return ID{}, errors.Errorf("%w: slot %q", ErrMalformedID, slot)
	}
	n, err := strconv.ParseInt(nonce, 10, 64)
	if err != nil {
		return ID{}, errors.Errorf("%w: nonce %q", ErrMalformedID, nonce)
	}
	return ID{Slot: s, Nonce: n}, nil
}

// Terminable is implemented by handles that eventually stop.
type Terminable interface {
	Terminated() bool
}

type slot[T Terminable] struct {
	id    ID
	value T
	used  bool
}

// 📚 Registry is safe for concurrent use
type Registry[T Terminable] struct {
	mu        sync.Mutex
	slots     []slot[T]
	lastNonce int64
	clock     func() time.Time
}

// 🏭 New creates an empty registry
func New[T Terminable]() *Registry[T] {
	return &Registry[T]{clock: time.Now}
}

// nextNonce must be called with mu held.
func (r *Registry[T]) nextNonce() int64 {
	n := r.clock().UnixNano()
	if n <= r.lastNonce {
		n = r.lastNonce + 1
	}
	r.lastNonce = n
	return n
}

// ➕ Add stores the value built for a freshly allocated ID
func (r *Registry[T]) Add(build func(id ID) T) (ID, T) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := len(r.slots)
	for i, s := range r.slots {
		if !s.used {
			idx = i
			break
		}
	}

	id := ID{Slot: int64(idx), Nonce: r.nextNonce()}
	value := build(id)
	s := slot[T]{id: id, value: value, used: true}
	if idx == len(r.slots) {
		r.slots = append(r.slots, s)
	} else {
		r.slots[idx] = s
	}
	return id, value
}

// 🔍 Get finds the handle only if both slot and nonce match
func (r *Registry[T]) Get(id ID) (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if id.Slot < 0 || id.Slot >= int64(len(r.slots)) {
		return zero, false
	}
	s := r.slots[id.Slot]
	if !s.used || s.id.Nonce != id.Nonce {
		return zero, false
	}
	return s.value, true
}

// Active lists the handles that have not terminated, in slot order.
func (r *Registry[T]) Active() []T {
	return r.collect(func(v T) bool { return !v.Terminated() })
}

// All lists every handle still held, in slot order.
func (r *Registry[T]) All() []T {
	return r.collect(func(T) bool { return true })
}

func (r *Registry[T]) collect(keep func(T) bool) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]T, 0, len(r.slots))
	for _, s := range r.slots {
		if s.used && keep(s.value) {
			out = append(out, s.value)
		}
	}
	return out
}

// 🧹 Cleanup drops every terminated handle and returns how many were dropped.
// Dropped IDs stop resolving; callers treat that as "done".
func (r *Registry[T]) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	dropped := 0
	for i := range r.slots {
		if r.slots[i].used && r.slots[i].value.Terminated() {
			r.slots[i] = slot[T]{value: zero}
			dropped++
		}
	}

	r.trim()
	return dropped
}

// trim drops trailing free slots. Callers hold mu.
func (r *Registry[T]) trim() {
	end := len(r.slots)
	for end > 0 && !r.slots[end-1].used {
		end--
	}
	r.slots = r.slots[:end]
}

// Len counts held handles.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, s := range r.slots {
		if s.used {
			n++
		}
	}
	return n
}
