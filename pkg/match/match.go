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


// Package match decides whether a filesystem item belongs in a search result.
//
// A Matcher combines a kind Filter with a name rule (Spec). Both are checked:
// the item's kind must be selected by the filter and its base name must satisfy
// the rule. Patterns are compiled once by Compile, so a bad regex or glob is
// reported before any walk starts.
package match

import (
	"regexp"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
)

var (
	ErrInvalidPattern = errors.Base("invalid pattern")
	ErrEmptyFilter    = errors.Base("filter excludes every kind")
	ErrUnknownKind    = errors.Base("unknown match kind")
)

// 🔤 Kind selects how Spec.Pattern is applied to a name
type Kind uint8

const (
	Regex Kind = iota
	Prefix
	Suffix
	Substring
	Glob
)

func (k Kind) String() string {
	switch k {
	case Regex:
		return "regex"
	case Prefix:
		return "prefix"
	case Suffix:
		return "suffix"
	case Substring:
		return "substring"
	case Glob:
		return "glob"
	default:
		return "unknown"
	}
}

// ParseKind accepts the names returned by Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := Regex; k <= Glob; k++ {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, errors.Errorf("%w: %q", ErrUnknownKind, s)
}

// 🎯 Spec is the name rule
type Spec struct {
	Kind          Kind   `json:"kind" yaml:"kind"`
	Pattern       string `json:"pattern" yaml:"pattern"`
	CaseSensitive bool   `json:"case_sensitive" yaml:"case_sensitive"`
}

// 🧺 Filter selects item kinds. An item passes if any selected kind applies
// to it.
type Filter struct {
	Files    bool `json:"files" yaml:"files"`
	Dirs     bool `json:"dirs" yaml:"dirs"`
	Links    bool `json:"links" yaml:"links"`
	SysItems bool `json:"sys_items" yaml:"sys_items"`
}

// All selects every kind.
func All() Filter {
	return Filter{Files: true, Dirs: true, Links: true, SysItems: true}
}

// Empty reports whether the filter can never pass anything.
func (f Filter) Empty() bool {
	return !f.Files && !f.Dirs && !f.Links && !f.SysItems
}

// Includes applies the filter to d.
func (f Filter) Includes(d entry.Descriptor) bool {
	return (f.Files && d.IsFile()) ||
		(f.Dirs && d.IsDir()) ||
		(f.Links && d.IsLink()) ||
		(f.SysItems && d.IsSysItem())
}

// 🔍 Matcher is a compiled Filter and Spec
type Matcher struct {
	filter Filter
	spec   Spec
	key    string
	re     *regexp.Regexp
}

// Compile validates the filter and the pattern.
func Compile(filter Filter, spec Spec) (*Matcher, error) {
	if filter.Empty() {
		return nil, ErrEmptyFilter
	}

	m := &Matcher{filter: filter, spec: spec, key: spec.Pattern}
	if !spec.CaseSensitive {
		m.key = strings.ToLower(spec.Pattern)
	}

	switch spec.Kind {
	case Regex:
		expr := spec.Pattern
		if !spec.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, errors.Errorf("%w: %s", ErrInvalidPattern, err.Error())
		}
		m.re = re
	case Glob:
		if !doublestar.ValidatePattern(m.key) {
			return nil, errors.Errorf("%w: bad glob %q", ErrInvalidPattern, spec.Pattern)
		}
	case Prefix, Suffix, Substring:
	default:
		return nil, errors.Errorf("%w: %d", ErrUnknownKind, spec.Kind)
	}

	return m, nil
}

// Spec returns the rule the matcher was compiled from.
func (m *Matcher) Spec() Spec {
	return m.spec
}

// Filter returns the filter the matcher was compiled from.
func (m *Matcher) Filter() Filter {
	return m.filter
}

// Match reports whether d passes both the filter and the name rule.
func (m *Matcher) Match(d entry.Descriptor) bool {
	return m.filter.Includes(d) && m.MatchName(d.Name())
}

// MatchName applies only the name rule.
func (m *Matcher) MatchName(name string) bool {
	if m.spec.Kind == Regex {
		return m.re.MatchString(name)
	}

	if !m.spec.CaseSensitive {
		name = strings.ToLower(name)
	}

	switch m.spec.Kind {
	case Prefix:
		return strings.HasPrefix(name, m.key)
	case Suffix:
		return strings.HasSuffix(name, m.key)
	case Substring:
		return strings.Contains(name, m.key)
	case Glob:
		ok, err := doublestar.Match(m.key, name)
		return err == nil && ok
	default:
		return false
	}
}
