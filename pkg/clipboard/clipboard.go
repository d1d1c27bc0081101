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


// Package clipboard holds at most one pending set of items waiting to be
// pasted, either copied (repeatable) or cut (single use).
package clipboard

import (
	"sync"

	"github.com/walteh/ferry/pkg/entry"
)

// 📋 Mode says what a paste of the entry should do
type Mode int

const (
	ModeCopied Mode = iota
	ModeCut
)

func (m Mode) String() string {
	if m == ModeCut {
		return "cut"
	}
	return "copied"
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Entry is one clipboard payload.
type Entry struct {
	Mode  Mode
	Items []entry.Descriptor
}

func (e Entry) clone() Entry {
	items := make([]entry.Descriptor, len(e.Items))
	copy(items, e.Items)
	return Entry{Mode: e.Mode, Items: items}
}

// 📎 Clipboard is safe for concurrent use
type Clipboard struct {
	mu      sync.Mutex
	pending *Entry
}

func New() *Clipboard {
	return &Clipboard{}
}

// Copy replaces the pending entry with a repeatable one.
func (c *Clipboard) Copy(items []entry.Descriptor) {
	c.put(Entry{Mode: ModeCopied, Items: items})
}

// Cut replaces the pending entry with a single-use one.
func (c *Clipboard) Cut(items []entry.Descriptor) {
	c.put(Entry{Mode: ModeCut, Items: items})
}

func (c *Clipboard) put(e Entry) {
	e = e.clone()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = &e
}

// 📤 Paste returns the pending entry. A cut entry is consumed; a copied entry
// stays for the next paste.
func (c *Clipboard) Paste() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return Entry{}, false
	}
	out := c.pending.clone()
	if c.pending.Mode == ModeCut {
		c.pending = nil
	}
	return out, true
}

// Restore puts a consumed entry back if nothing replaced it meanwhile. Used
// when a paste is rejected before any work began.
func (c *Clipboard) Restore(e Entry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending != nil {
		return false
	}
	e = e.clone()
	c.pending = &e
	return true
}

// Peek returns the pending entry without consuming it.
func (c *Clipboard) Peek() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil {
		return Entry{}, false
	}
	return c.pending.clone(), true
}

func (c *Clipboard) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

func (c *Clipboard) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending == nil
}
