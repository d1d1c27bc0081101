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

package transfer

import (
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

const (
	// FolderUnit is the weight of a directory itself.
	FolderUnit uint64 = 1

	DefaultChunkSize = 1024
)

var (
	ErrNoItems        = errors.Base("nothing to transfer")
	ErrBadDestination = errors.Base("destination is not a directory")
	ErrIntoItself     = errors.Base("cannot transfer an item into itself")
	ErrUnknownKind    = errors.Base("unknown transfer kind")
	ErrConflict       = errors.Base("destination already exists")
	ErrAccounting     = errors.Base("transferred units do not match measured total")
	ErrNoSymlinks     = errors.Base("filesystem cannot create symlinks")
)

// 🚚 Kind is copy or move
type Kind int

const (
	KindCopy Kind = iota
	KindMove
)

func (k Kind) String() string {
	switch k {
	case KindCopy:
		return "copy"
	case KindMove:
		return "move"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "copy":
		*k = KindCopy
	case "move":
		*k = KindMove
	default:
		return errors.Errorf("%w: %q", ErrUnknownKind, string(text))
	}
	return nil
}

// 📊 Phase is where a session is in its lifecycle
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseActive
	PhaseTerminated
	PhaseFailed
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseActive:
		return "active"
	case PhaseTerminated:
		return "terminated"
	case PhaseFailed:
		return "failed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Terminal phases never change again.
func (p Phase) Terminal() bool {
	return p >= PhaseTerminated
}

// 📸 Progress is a consistent snapshot of a session
type Progress struct {
	Phase   Phase
	Total   uint64 // while initializing, the total measured so far
	Current uint64
	Elapsed time.Duration
	Err     error
}
