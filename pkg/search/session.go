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
	"context"
	"path/filepath"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/match"
	"github.com/walteh/ferry/pkg/metrics"
)

type session struct {
	fs      afero.Fs
	opts    Options
	matcher *match.Matcher
	logger  zerolog.Logger
	metrics *metrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}

	mu     sync.Mutex
	budget int
	buf    []entry.Descriptor
	err    error
}

// enqueue reports false once the budget is spent.
func (s *session) enqueue(d entry.Descriptor) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.budget <= 0 {
		return false
	}
	s.buf = append(s.buf, d)
	s.budget--
	s.metrics.SearchFound()
	if s.budget == 0 {
		s.cancel()
		return false
	}
	return true
}

func (s *session) stop() {
	s.mu.Lock()
	s.budget = 0
	s.mu.Unlock()
	s.cancel()
}

func (s *session) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.budget = 0
	s.mu.Unlock()
	s.cancel()
}

func (s *session) finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *session) read() Batch {
	// observe termination first so nothing enqueued afterwards can be missed
	state := StateActive
	if s.finished() {
		state = StateTerminated
	}

	s.mu.Lock()
	items := s.buf
	s.buf = nil
	s.mu.Unlock()

	if items == nil {
		items = []entry.Descriptor{}
	}
	return Batch{State: state, Items: items}
}

func (s *session) error() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// 🏃 run walks the tree and closes done when every task has returned
func (s *session) run(ctx context.Context) {
	defer close(s.done)
	defer s.metrics.SearchStopped()
	defer s.cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.walk(gctx, g, s.opts.Root, s.opts.Depth)
	})

	if err := g.Wait(); err != nil {
		s.fail(err)
		s.logger.Debug().Err(err).Msg("search stopped on error")
		return
	}
	s.logger.Debug().Msg("search finished")
}

func (s *session) walk(ctx context.Context, g *errgroup.Group, dir string, depth uint8) error {
	if depth == 0 || ctx.Err() != nil {
		return nil
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		s.metrics.SearchFailed()
		if dir == s.opts.Root {
			return errors.Errorf("%w: %s: %s", ErrRootUnreadable, dir, err.Error())
		}
		if s.opts.SkipErrors {
			s.logger.Debug().Err(err).Str("dir", dir).Msg("skipping unreadable directory")
			return nil
		}
		return errors.Errorf("%w: %s: %s", ErrBranchUnreadable, dir, err.Error())
	}

	for _, info := range infos {
		if ctx.Err() != nil {
			return nil
		}

		path := filepath.Join(dir, info.Name())
		if s.excluded(path) {
			continue
		}

		d := entry.New(path, info)
		if d.IsDir() && depth > 1 {
			g.Go(func() error {
				return s.walk(ctx, g, path, depth-1)
			})
		}

		if s.matcher.Match(d) && !s.enqueue(d) {
			return nil
		}
	}
	return nil
}

func (s *session) excluded(path string) bool {
	if len(s.opts.Exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(s.opts.Root, path)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, p := range s.opts.Exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}
