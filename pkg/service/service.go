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


// Package service is the polling façade over the search and transfer
// engines. One Service owns one search engine, one transfer engine, the
// clipboard and the file operation manager, and speaks in plain wire types.
package service

import (
	"context"

	"github.com/spf13/afero"

	"github.com/walteh/ferry/pkg/clipboard"
	"github.com/walteh/ferry/pkg/config"
	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/fsops"
	"github.com/walteh/ferry/pkg/match"
	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/registry"
	"github.com/walteh/ferry/pkg/search"
	"github.com/walteh/ferry/pkg/transfer"
)

// 🔍 Searcher is what the façade needs from a search engine
type Searcher interface {
	Search(ctx context.Context, opts search.Options) error
	Read() search.Batch
	Terminate()
	IsSearching() bool
	Err() error
	Close()
}

// 🚚 Transferrer is what the façade needs from a transfer engine
type Transferrer interface {
	Begin(ctx context.Context, req transfer.Request) (registry.ID, error)
	Get(id registry.ID) (*transfer.Session, bool)
	Active() []*transfer.Session
	Cleanup() int
	Cancel(id registry.ID) bool
	Close()
}

// 🔧 Options wires a Service. Only Fs is required.
type Options struct {
	Fs          afero.Fs
	Config      *config.Config
	Metrics     *metrics.Metrics
	Searcher    Searcher
	Transferrer Transferrer
}

// 🎛️ Service is safe for concurrent use
type Service struct {
	cfg       *config.Config
	searcher  Searcher
	transfers Transferrer
	clipboard *clipboard.Clipboard
	files     *fsops.Manager
}

// 🏭 New builds the engines that were not supplied
func New(opts Options) *Service {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	s := &Service{
		cfg:       cfg,
		searcher:  opts.Searcher,
		transfers: opts.Transferrer,
		clipboard: clipboard.New(),
		files:     fsops.New(fs),
	}
	if s.searcher == nil {
		s.searcher = search.New(fs, opts.Metrics)
	}
	if s.transfers == nil {
		s.transfers = transfer.New(fs, cfg.Transfer.Options(), opts.Metrics)
	}
	return s
}

// Close stops every running session.
func (s *Service) Close() {
	s.searcher.Close()
	s.transfers.Close()
}

// 🔍 search commands

// SearchRequest is the wire form of a search. Nil limits fall back to the
// configured defaults.
type SearchRequest struct {
	Root       string       `json:"root"`
	Filter     match.Filter `json:"filter"`
	Match      match.Spec   `json:"match"`
	MaxDepth   *uint8       `json:"max_depth,omitempty"`
	MaxFinds   *int         `json:"max_finds,omitempty"`
	SkipErrors *bool        `json:"skip_errors,omitempty"`
	Exclude    []string     `json:"exclude,omitempty"`
}

// Options resolves the request against defaults.
func (r SearchRequest) Options(defaults config.SearchConfig) search.Options {
	opts := search.Options{
		Root:       r.Root,
		Filter:     r.Filter,
		Match:      r.Match,
		Depth:      defaults.MaxDepth,
		MaxFinds:   defaults.MaxFinds,
		SkipErrors: defaults.SkipErrors,
		Exclude:    defaults.Exclude,
	}
	if r.MaxDepth != nil {
		opts.Depth = *r.MaxDepth
	}
	if r.MaxFinds != nil {
		opts.MaxFinds = *r.MaxFinds
	}
	if r.SkipErrors != nil {
		opts.SkipErrors = *r.SkipErrors
	}
	if r.Exclude != nil {
		opts.Exclude = r.Exclude
	}
	return opts
}

// SearchMessage is one polled batch.
type SearchMessage struct {
	State search.State       `json:"state"`
	Items []entry.Descriptor `json:"items"`
	Error string             `json:"error,omitempty"`
}

func (s *Service) Search(ctx context.Context, req SearchRequest) error {
	return s.searcher.Search(ctx, req.Options(s.cfg.Search))
}

// SearchMessage drains whatever the search found since the last call.
func (s *Service) SearchMessage() SearchMessage {
	b := s.searcher.Read()
	msg := SearchMessage{State: b.State, Items: b.Items}
	if b.State == search.StateTerminated {
		if err := s.searcher.Err(); err != nil {
			msg.Error = err.Error()
		}
	}
	return msg
}

func (s *Service) TerminateSearch() {
	s.searcher.Terminate()
}

func (s *Service) IsSearching() bool {
	return s.searcher.IsSearching()
}

// 📋 clipboard commands

func (s *Service) Copy(items []entry.Descriptor) {
	s.clipboard.Copy(items)
}

func (s *Service) Cut(items []entry.Descriptor) {
	s.clipboard.Cut(items)
}

func (s *Service) ClipboardEmpty() bool {
	return s.clipboard.IsEmpty()
}

// ClipboardEntry peeks at the pending entry.
func (s *Service) ClipboardEntry() (clipboard.Entry, bool) {
	return s.clipboard.Peek()
}

func (s *Service) ClearClipboard() {
	s.clipboard.Clear()
}

// 📤 Paste starts a transfer of the clipboard into destination. It returns a
// nil id when the clipboard is empty. A cut entry rejected before any work
// began goes back on the clipboard.
func (s *Service) Paste(ctx context.Context, destination string) (*registry.ID, error) {
	pending, ok := s.clipboard.Paste()
	if !ok {
		return nil, nil
	}

	kind := transfer.KindCopy
	if pending.Mode == clipboard.ModeCut {
		kind = transfer.KindMove
	}

	id, err := s.transfers.Begin(ctx, transfer.Request{
		Items:       pending.Items,
		Destination: destination,
		Kind:        kind,
	})
	if err != nil {
		if pending.Mode == clipboard.ModeCut {
			s.clipboard.Restore(pending)
		}
		return nil, err
	}
	return &id, nil
}

// 🚚 transfer commands

// TransferMessage is the wire form of one session.
type TransferMessage struct {
	ID            registry.ID    `json:"id"`
	Kind          transfer.Kind  `json:"kind"`
	State         transfer.Phase `json:"state"`
	Total         uint64         `json:"total"`
	Current       uint64         `json:"current"`
	ElapsedMillis int64          `json:"elapsed_millis"`
	Error         string         `json:"error,omitempty"`
}

func message(sess *transfer.Session) TransferMessage {
	p := sess.Snapshot()
	msg := TransferMessage{
		ID:            sess.ID(),
		Kind:          sess.Kind(),
		State:         p.Phase,
		Total:         p.Total,
		Current:       p.Current,
		ElapsedMillis: p.Elapsed.Milliseconds(),
	}
	if p.Err != nil {
		msg.Error = p.Err.Error()
	}
	return msg
}

// TransferSessions reports the sessions that are still running. Finished
// sessions stay reachable through TransferSession until CleanupTransfers.
func (s *Service) TransferSessions() []TransferMessage {
	sessions := s.transfers.Active()
	out := make([]TransferMessage, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, message(sess))
	}
	return out
}

// TransferSession reports one session; false means unknown or cleaned up.
func (s *Service) TransferSession(id registry.ID) (TransferMessage, bool) {
	sess, ok := s.transfers.Get(id)
	if !ok {
		return TransferMessage{}, false
	}
	return message(sess), true
}

func (s *Service) CancelTransfer(id registry.ID) bool {
	return s.transfers.Cancel(id)
}

// CleanupTransfers drops terminal sessions and returns how many.
func (s *Service) CleanupTransfers() int {
	return s.transfers.Cleanup()
}

// 📁 file operations

func (s *Service) Delete(ctx context.Context, items []entry.Descriptor) error {
	return s.files.Delete(ctx, items)
}

func (s *Service) Rename(ctx context.Context, path, newName string) (string, error) {
	return s.files.Rename(ctx, path, newName)
}

func (s *Service) CreateFile(ctx context.Context, path string) error {
	return s.files.CreateFile(ctx, path)
}

func (s *Service) CreateDir(ctx context.Context, path string) error {
	return s.files.CreateDir(ctx, path)
}

func (s *Service) Children(ctx context.Context, dir string, filter *match.Filter, order *fsops.Sort) ([]entry.Descriptor, error) {
	return s.files.Children(ctx, dir, filter, order)
}

func (s *Service) Stat(ctx context.Context, path string) (entry.Descriptor, error) {
	return s.files.Stat(ctx, path)
}

func (s *Service) ReadLink(ctx context.Context, path string) (string, error) {
	return s.files.ReadLink(ctx, path)
}
