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

package registry

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type handle struct {
	id   ID
	done atomic.Bool
}

func (h *handle) Terminated() bool { return h.done.Load() }

func newHandle(id ID) *handle { return &handle{id: id} }

func TestAddAndGet(t *testing.T) {
	r := New[*handle]()

	id1, h1 := r.Add(newHandle)
	id2, h2 := r.Add(newHandle)

	assert.Equal(t, int64(0), id1.Slot)
	assert.Equal(t, int64(1), id2.Slot)
	assert.Greater(t, id2.Nonce, id1.Nonce)
	assert.Equal(t, id1, h1.id)

	got, ok := r.Get(id2)
	require.True(t, ok)
	assert.Same(t, h2, got)

	_, ok = r.Get(ID{Slot: 1, Nonce: id2.Nonce + 1})
	assert.False(t, ok, "nonce mismatch must not resolve")

	_, ok = r.Get(ID{Slot: 7, Nonce: id2.Nonce})
	assert.False(t, ok, "unknown slot must not resolve")

	_, ok = r.Get(ID{Slot: -1})
	assert.False(t, ok)
}

func TestNonceStrictlyIncreasesWithFrozenClock(t *testing.T) {
	r := New[*handle]()
	frozen := time.Unix(1700000000, 0)
	r.clock = func() time.Time { return frozen }

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		id, _ := r.Add(newHandle)
		assert.False(t, seen[id.Nonce], "nonce reused")
		seen[id.Nonce] = true
	}
}

func TestCleanupAndStaleIDs(t *testing.T) {
	r := New[*handle]()

	id0, h0 := r.Add(newHandle)
	id1, _ := r.Add(newHandle)
	id2, h2 := r.Add(newHandle)

	h0.done.Store(true)
	h2.done.Store(true)

	assert.Len(t, r.Active(), 1)
	assert.Len(t, r.All(), 3)

	assert.Equal(t, 2, r.Cleanup())
	assert.Equal(t, 1, r.Len())

	_, ok := r.Get(id0)
	assert.False(t, ok, "pruned handle disappears")
	_, ok = r.Get(id2)
	assert.False(t, ok)

	got, ok := r.Get(id1)
	require.True(t, ok, "live handle keeps its slot across cleanup")
	assert.Equal(t, id1, got.id)

	reused, _ := r.Add(newHandle)
	assert.Equal(t, id0.Slot, reused.Slot, "lowest free slot is reused")
	assert.NotEqual(t, id0.Nonce, reused.Nonce)

	_, ok = r.Get(id0)
	assert.False(t, ok, "stale id after slot reuse is not found")
}

func TestParseID(t *testing.T) {
	id := ID{Slot: 3, Nonce: 1712345678901234567}
	back, err := ParseID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, back)

	for _, bad := range []string{"", "3", "a:1", "1:b", "-1:5"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrMalformedID, bad)
	}
}

func TestConcurrentAdd(t *testing.T) {
	r := New[*handle]()

	var wg sync.WaitGroup
	ids := make(chan ID, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, _ := r.Add(newHandle)
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	slots := map[int64]bool{}
	for id := range ids {
		assert.False(t, slots[id.Slot])
		slots[id.Slot] = true
		_, ok := r.Get(id)
		assert.True(t, ok)
	}
	assert.Equal(t, 100, r.Len())
}
