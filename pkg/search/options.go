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

package search

import (
	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/match"
)

var (
	ErrNoRoot           = errors.Base("search root is empty")
	ErrNegativeFinds    = errors.Base("max finds must not be negative")
	ErrBadExclude       = errors.Base("invalid exclude pattern")
	ErrRootUnreadable   = errors.Base("search root is unreadable")
	ErrBranchUnreadable = errors.Base("directory is unreadable")
)

// 🔧 Options configures one search session
type Options struct {
	Root       string
	Filter     match.Filter
	Match      match.Spec
	Depth      uint8
	MaxFinds   int
	SkipErrors bool
	Exclude    []string // doublestar patterns, slash separated, relative to Root
}

func (o Options) validate() (*match.Matcher, error) {
	if o.Root == "" {
		return nil, ErrNoRoot
	}
	if o.MaxFinds < 0 {
		return nil, errors.Errorf("%w: %d", ErrNegativeFinds, o.MaxFinds)
	}
	for _, p := range o.Exclude {
		if !doublestar.ValidatePattern(p) {
			return nil, errors.Errorf("%w: %q", ErrBadExclude, p)
		}
	}
	m, err := match.Compile(o.Filter, o.Match)
	if err != nil {
		return nil, errors.Errorf("compiling matcher: %w", err)
	}
	return m, nil
}

// 📊 State tags a batch
type State int

const (
	StateActive State = iota
	StateTerminated
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "terminated"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// 📦 Batch is what one Read drains
type Batch struct {
	State State
	Items []entry.Descriptor
}
