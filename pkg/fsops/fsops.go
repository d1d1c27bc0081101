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


// Package fsops performs the small, synchronous file operations a file
// manager offers next to search and transfer: delete, rename, create,
// list, stat and atomic writes.
package fsops

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/match"
)

var (
	ErrBadName    = errors.Base("invalid file name")
	ErrExists     = errors.Base("target already exists")
	ErrNotDir     = errors.Base("not a directory")
	ErrNoLinks    = errors.Base("filesystem cannot read symlinks")
	ErrUnknownKey = errors.Base("unknown sort key")
)

// 🔀 SortKey orders a listing
type SortKey string

const (
	SortName     SortKey = "name"
	SortModified SortKey = "modified"
	SortAccessed SortKey = "accessed"
	SortSize     SortKey = "size"
)

// Sort is an optional listing order.
type Sort struct {
	Key        SortKey `json:"key"`
	Descending bool    `json:"descending"`
}

func (s Sort) validate() error {
	switch s.Key {
	case SortName, SortModified, SortAccessed, SortSize:
		return nil
	default:
		return errors.Errorf("%w: %q", ErrUnknownKey, s.Key)
	}
}

func (s Sort) apply(ds []entry.Descriptor) {
	less := func(a, b entry.Descriptor) bool {
		am, bm := a.Metadata, b.Metadata
		if am == nil || bm == nil || s.Key == SortName {
			return a.Name() < b.Name()
		}
		switch s.Key {
		case SortModified:
			return am.Modified.Before(bm.Modified)
		case SortAccessed:
			return am.Accessed.Before(bm.Accessed)
		default:
			return am.Size < bm.Size
		}
	}
	sort.SliceStable(ds, func(i, j int) bool {
		if s.Descending {
			return less(ds[j], ds[i])
		}
		return less(ds[i], ds[j])
	})
}

// 💾 Manager runs file operations against one filesystem
type Manager struct {
	fs afero.Fs
}

// 🏭 New creates a manager over fs
func New(fs afero.Fs) *Manager {
	return &Manager{fs: fs}
}

// Fs exposes the filesystem the manager works on.
func (m *Manager) Fs() afero.Fs {
	return m.fs
}

// 🗑️ Delete removes every item recursively and reports all failures.
func (m *Manager) Delete(ctx context.Context, items []entry.Descriptor) error {
	var errs []error
	for _, it := range items {
		if err := m.fs.RemoveAll(it.Path); err != nil {
			errs = append(errs, errors.Errorf("deleting %s: %w", it.Path, err))
			continue
		}
		zerolog.Ctx(ctx).Debug().Str("path", it.Path).Msg("deleted")
	}
	return errors.Join(errs...)
}

// ✏️ Rename gives path a new base name within the same directory.
func (m *Manager) Rename(ctx context.Context, path, newName string) (string, error) {
	if newName == "" || newName == "." || newName == ".." || strings.ContainsAny(newName, `/\`) {
		return "", errors.Errorf("%w: %q", ErrBadName, newName)
	}

	target := filepath.Join(filepath.Dir(filepath.Clean(path)), newName)
	if _, err := entry.Lstat(m.fs, target); err == nil {
		return "", errors.Errorf("%w: %s", ErrExists, target)
	}
	if err := m.fs.Rename(path, target); err != nil {
		return "", errors.Errorf("renaming %s: %w", path, err)
	}

	zerolog.Ctx(ctx).Debug().Str("from", path).Str("to", target).Msg("renamed")
	return target, nil
}

// CreateFile makes a new empty file; it fails if path exists.
func (m *Manager) CreateFile(ctx context.Context, path string) error {
	f, err := m.fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Errorf("creating file %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return errors.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// CreateDir makes one new directory; the parent must exist.
func (m *Manager) CreateDir(ctx context.Context, path string) error {
	if err := m.fs.Mkdir(path, 0o755); err != nil {
		return errors.Errorf("creating directory %s: %w", path, err)
	}
	return nil
}

// 📂 Children lists dir. A directory's Size in the result is its number of
// entries, not a byte count. A nil filter passes everything; a nil order
// keeps the filesystem's name order.
func (m *Manager) Children(ctx context.Context, dir string, filter *match.Filter, order *Sort) ([]entry.Descriptor, error) {
	if order != nil {
		if err := order.validate(); err != nil {
			return nil, err
		}
	}

	info, err := m.fs.Stat(dir)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%w: %s", ErrNotDir, dir)
	}

	infos, err := afero.ReadDir(m.fs, dir)
	if err != nil {
		return nil, errors.Errorf("listing %s: %w", dir, err)
	}

	out := make([]entry.Descriptor, 0, len(infos))
	for _, fi := range infos {
		d := entry.New(filepath.Join(dir, fi.Name()), fi)
		if filter != nil && !filter.Includes(d) {
			continue
		}
		if d.IsDir() {
			d.Metadata.Size = m.count(d.Path)
		}
		out = append(out, d)
	}

	if order != nil {
		order.apply(out)
	}
	return out, nil
}

func (m *Manager) count(dir string) uint64 {
	f, err := m.fs.Open(dir)
	if err != nil {
		return 0
	}
	defer f.Close()
	names, err := f.Readdirnames(-1)
	if err != nil {
		return 0
	}
	return uint64(len(names))
}

// Stat describes path without following a final symlink.
func (m *Manager) Stat(ctx context.Context, path string) (entry.Descriptor, error) {
	return entry.Stat(m.fs, path)
}

// ReadLink returns the target a symlink points to.
func (m *Manager) ReadLink(ctx context.Context, path string) (string, error) {
	r, ok := m.fs.(afero.LinkReader)
	if !ok {
		return "", errors.Errorf("%w: %s", ErrNoLinks, path)
	}
	target, err := r.ReadlinkIfPossible(path)
	if err != nil {
		return "", errors.Errorf("reading link %s: %w", path, err)
	}
	return target, nil
}

// 📝 WriteFileAtomic writes content next to path and renames it into place,
// creating parent directories as needed.
func (m *Manager) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	if err := m.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	tempPath := path + ".tmp"
	if err := afero.WriteFile(m.fs, tempPath, content, 0o644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	if err := m.fs.Rename(tempPath, path); err != nil {
		_ = m.fs.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}
	return nil
}
