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
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/registry"
)

// 🔧 Options tunes the engine
type Options struct {
	ChunkSize  int // bytes per read/write step; DefaultChunkSize when <= 0
	MaxWorkers int // per-session cap on concurrent items; unbounded when <= 0
}

// 📥 Request describes one paste
type Request struct {
	Items       []entry.Descriptor
	Destination string
	Kind        Kind
}

// 🚛 Engine runs any number of concurrent transfer sessions
type Engine struct {
	fs       afero.Fs
	opts     Options
	metrics  *metrics.Metrics
	sessions *registry.Registry[*Session]
	wg       sync.WaitGroup
}

// 🏭 New creates a transfer engine over fs. m may be nil.
func New(fs afero.Fs, opts Options, m *metrics.Metrics) *Engine {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &Engine{
		fs:       fs,
		opts:     opts,
		metrics:  m,
		sessions: registry.New[*Session](),
	}
}

func (e *Engine) validate(req Request) ([]string, string, error) {
	if len(req.Items) == 0 {
		return nil, "", ErrNoItems
	}
	if req.Kind != KindCopy && req.Kind != KindMove {
		return nil, "", errors.Errorf("%w: %d", ErrUnknownKind, req.Kind)
	}

	dst := filepath.Clean(req.Destination)
	info, err := e.fs.Stat(dst)
	if err != nil {
		return nil, "", errors.Errorf("%w: %s: %s", ErrBadDestination, dst, err.Error())
	}
	if !info.IsDir() {
		return nil, "", errors.Errorf("%w: %s", ErrBadDestination, dst)
	}

	items := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		src := filepath.Clean(it.Path)
		if dst == src || strings.HasPrefix(dst, src+string(filepath.Separator)) {
			return nil, "", errors.Errorf("%w: %s into %s", ErrIntoItself, src, dst)
		}
		items = append(items, src)
	}
	return items, dst, nil
}

// 🚀 Begin validates req and starts a detached session. Configuration errors
// are returned synchronously and create no session. ctx only supplies the
// logger; use Cancel or Close to stop the work.
func (e *Engine) Begin(ctx context.Context, req Request) (registry.ID, error) {
	items, dst, err := e.validate(req)
	if err != nil {
		return registry.ID{}, err
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	id, s := e.sessions.Add(func(id registry.ID) *Session {
		return &Session{
			id:          id,
			kind:        req.Kind,
			items:       items,
			destination: dst,
			started:     time.Now(),
			ctx:         sctx,
			cancel:      cancel,
			done:        make(chan struct{}),
			metrics:     e.metrics,
			logger: zerolog.Ctx(ctx).With().
				Str("session", id.String()).
				Str("kind", req.Kind.String()).
				Logger(),
		}
	})

	e.metrics.TransferStarted(req.Kind.String())
	s.logger.Debug().Strs("items", items).Str("destination", dst).Msg("starting transfer")

	e.wg.Add(1)
	go e.run(s)
	return id, nil
}

func (e *Engine) run(s *Session) {
	defer e.wg.Done()

	weights, err := e.measure(s)
	if err != nil {
		s.finish(err)
		return
	}
	s.activate()
	s.finish(e.transfer(s, weights))
}

// transfer runs one pooled worker per top-level item and returns the first
// failure.
func (e *Engine) transfer(s *Session, weights []uint64) error {
	size := len(s.items)
	if e.opts.MaxWorkers > 0 && e.opts.MaxWorkers < size {
		size = e.opts.MaxWorkers
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return errors.Errorf("creating worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg   sync.WaitGroup
		errs = make([]error, len(s.items))
	)
	for i, src := range s.items {
		wg.Add(1)
		err := pool.Submit(func() {
			defer wg.Done()
			errs[i] = e.transferItem(s, src, weights[i])
		})
		if err != nil {
			wg.Done()
			errs[i] = errors.Errorf("submitting %s: %w", src, err)
		}
	}
	wg.Wait()

	var cancelled error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) {
			cancelled = err
			continue
		}
		return err
	}
	return cancelled
}

func (e *Engine) transferItem(s *Session, src string, weight uint64) error {
	target := filepath.Join(s.destination, filepath.Base(src))
	if err := e.ensureAbsent(target); err != nil {
		return err
	}

	if s.kind == KindMove {
		if err := e.fs.Rename(src, target); err == nil {
			s.advance(weight)
			s.logger.Debug().Str("item", src).Msg("moved by rename")
			return nil
		}
	}

	if err := e.copyEntry(s.ctx, s, src, s.destination); err != nil {
		return err
	}

	if s.kind == KindMove {
		if err := e.fs.RemoveAll(src); err != nil {
			return errors.Errorf("removing moved source %s: %w", src, err)
		}
	}
	return nil
}

func (e *Engine) ensureAbsent(path string) error {
	_, err := entry.Lstat(e.fs, path)
	switch {
	case err == nil:
		return errors.Errorf("%w: %s", ErrConflict, path)
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return err
	}
}

// 🔍 Get finds a session that has not been cleaned up
func (e *Engine) Get(id registry.ID) (*Session, bool) {
	return e.sessions.Get(id)
}

// Active lists sessions that are still running.
func (e *Engine) Active() []*Session {
	return e.sessions.Active()
}

// All lists every session not yet cleaned up.
func (e *Engine) All() []*Session {
	return e.sessions.All()
}

// Cleanup forgets terminal sessions.
func (e *Engine) Cleanup() int {
	return e.sessions.Cleanup()
}

// 🛑 Cancel stops the session with id. It reports whether it was found.
func (e *Engine) Cancel(id registry.ID) bool {
	s, ok := e.sessions.Get(id)
	if !ok {
		return false
	}
	s.Cancel()
	return true
}

// Close cancels every session and waits for their workers.
func (e *Engine) Close() {
	for _, s := range e.sessions.All() {
		s.Cancel()
	}
	e.wg.Wait()
}
