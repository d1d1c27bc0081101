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
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/registry"
)

// 🧾 Session tracks one Begin call
type Session struct {
	id          registry.ID
	kind        Kind
	items       []string
	destination string
	started     time.Time

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger zerolog.Logger

	metrics *metrics.Metrics

	mu       sync.Mutex
	phase    Phase
	total    uint64
	current  uint64
	finished time.Time
	err      error
}

func (s *Session) ID() registry.ID     { return s.id }
func (s *Session) Kind() Kind          { return s.kind }
func (s *Session) Destination() string { return s.destination }

// Items lists the source paths being transferred.
func (s *Session) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Done is closed once the session is terminal.
func (s *Session) Done() <-chan struct{} { return s.done }

// Terminated reports whether the session reached any terminal phase.
func (s *Session) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase.Terminal()
}

// Err is set only for Failed sessions.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// 📸 Snapshot reads the whole state under one lock
func (s *Session) Snapshot() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()

	end := s.finished
	if !s.phase.Terminal() {
		end = time.Now()
	}
	return Progress{
		Phase:   s.phase,
		Total:   s.total,
		Current: s.current,
		Elapsed: end.Sub(s.started),
		Err:     s.err,
	}
}

// Cancel asks every worker to stop; the session ends Cancelled.
func (s *Session) Cancel() {
	s.cancel()
}

func (s *Session) addTotal(n uint64) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseInitializing {
		s.total += n
	}
}

func (s *Session) activate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase == PhaseInitializing {
		s.phase = PhaseActive
		s.current = 0
	}
}

func (s *Session) advance(n uint64) {
	if n == 0 {
		return
	}
	s.mu.Lock()
	if s.phase == PhaseActive {
		s.current += n
	}
	s.mu.Unlock()
	s.metrics.TransferProgress(n)
}

// finish decides the terminal phase. err is the first worker failure. Work
// that every worker committed counts as done even if Cancel raced the join.
func (s *Session) finish(err error) {
	s.mu.Lock()

	cancelled := s.ctx.Err() != nil
	switch {
	case err != nil && !errors.Is(err, context.Canceled):
		s.phase = PhaseFailed
		s.err = err
	case err == nil && s.phase == PhaseActive && s.current == s.total:
		s.phase = PhaseTerminated
	case cancelled || err != nil:
		s.phase = PhaseCancelled
	case s.current != s.total:
		s.phase = PhaseFailed
		s.err = errors.Errorf("%w: %d of %d", ErrAccounting, s.current, s.total)
	default:
		s.phase = PhaseTerminated
	}
	s.finished = time.Now()
	phase, total, current, ferr := s.phase, s.total, s.current, s.err
	s.mu.Unlock()

	s.cancel()
	close(s.done)
	s.metrics.TransferFinished(s.kind.String(), phase.String())

	ev := s.logger.Debug()
	if ferr != nil {
		ev = s.logger.Warn().Err(ferr)
	}
	ev.Str("phase", phase.String()).
		Uint64("total", total).
		Uint64("current", current).
		Msg("transfer finished")
}
