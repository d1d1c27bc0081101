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
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/metrics"
)

// 🔍 Engine owns at most one search session at a time
type Engine struct {
	fs      afero.Fs
	metrics *metrics.Metrics

	mu      sync.Mutex
	current *session
}

// 🏭 New creates a search engine over fs. m may be nil.
func New(fs afero.Fs, m *metrics.Metrics) *Engine {
	return &Engine{fs: fs, metrics: m}
}

// 🚀 Search validates opts and starts a detached session, replacing (and
// joining) any session already running. Invalid options leave the engine
// untouched.
//
// The session outlives ctx; only Terminate, Close, an exhausted budget or a
// fatal read error stop it early. ctx supplies the logger.
func (e *Engine) Search(ctx context.Context, opts Options) error {
	matcher, err := opts.validate()
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if prev := e.current; prev != nil {
		prev.stop()
		<-prev.done
	}

	jobCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s := &session{
		fs:      e.fs,
		opts:    opts,
		matcher: matcher,
		logger:  zerolog.Ctx(ctx).With().Str("root", opts.Root).Logger(),
		metrics: e.metrics,
		cancel:  cancel,
		done:    make(chan struct{}),
		budget:  opts.MaxFinds,
	}
	e.current = s
	e.metrics.SearchStarted()

	s.logger.Debug().
		Uint8("depth", opts.Depth).
		Int("max_finds", opts.MaxFinds).
		Str("match", opts.Match.Kind.String()).
		Msg("starting search")

	if opts.MaxFinds == 0 {
		cancel()
		e.metrics.SearchStopped()
		close(s.done)
		return nil
	}

	go s.run(jobCtx)
	return nil
}

func (e *Engine) session() *session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// 📥 Read drains everything found since the previous Read. It never blocks on
// the walk. With no session it returns an empty terminated batch.
func (e *Engine) Read() Batch {
	s := e.session()
	if s == nil {
		return Batch{State: StateTerminated, Items: []entry.Descriptor{}}
	}
	return s.read()
}

// 🛑 Terminate stops the current session. Safe to call repeatedly.
func (e *Engine) Terminate() {
	if s := e.session(); s != nil {
		s.stop()
	}
}

func (e *Engine) IsSearching() bool {
	s := e.session()
	return s != nil && !s.finished()
}

// Err reports why the current session ended early, if it did.
func (e *Engine) Err() error {
	s := e.session()
	if s == nil {
		return nil
	}
	return s.error()
}

// ⏳ Wait blocks until the current session finishes or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	s := e.session()
	if s == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close terminates and joins the current session.
func (e *Engine) Close() {
	s := e.session()
	if s == nil {
		return
	}
	s.stop()
	<-s.done
}
