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


// Package entry describes filesystem items as seen by the search and transfer
// engines.
//
// A Descriptor is identified by its path alone. Its Metadata is optional: items
// pushed onto the clipboard by a caller usually arrive without it, items found
// by a search always carry it.
//
// ⚠️ Metadata.Size has two meanings depending on who produced it. A listing
// (see fsops.Manager.Children) reports a directory's child count there, while
// the transfer engine keeps its own payload weight per item and never reads
// Metadata.Size for directories.
package entry

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Attribute bits reported in Metadata.Attributes.
const (
	AttrHidden uint32 = 1 << iota // name starts with a dot
	AttrSystem                    // device, socket, pipe or other irregular node
	AttrReadOnly                  // no write permission bit set
)

// 📄 Metadata is what a stat call tells us about an item
type Metadata struct {
	Kind       Kind      `json:"kind"`
	Size       uint64    `json:"size"`
	Mode       string    `json:"mode"`
	Modified   time.Time `json:"modified"`
	Accessed   time.Time `json:"accessed,omitempty"`
	Attributes uint32    `json:"attributes"`
}

// 📦 Descriptor is a path plus whatever metadata was available when it was built
type Descriptor struct {
	Path     string    `json:"path"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// FromPath builds a descriptor without metadata.
func FromPath(path string) Descriptor {
	return Descriptor{Path: filepath.Clean(path)}
}

// 🏭 New builds a descriptor from an lstat-style FileInfo
func New(path string, info os.FileInfo) Descriptor {
	d := Descriptor{Path: filepath.Clean(path)}
	if info == nil {
		return d
	}

	mode := info.Mode()
	md := &Metadata{
		Kind:     KindOf(mode),
		Mode:     mode.String(),
		Modified: info.ModTime(),
		Accessed: accessTime(info),
	}
	if info.Size() > 0 {
		md.Size = uint64(info.Size())
	}
	if strings.HasPrefix(info.Name(), ".") && info.Name() != "." && info.Name() != ".." {
		md.Attributes |= AttrHidden
	}
	if md.Kind == KindSpecial {
		md.Attributes |= AttrSystem
	}
	if mode.Perm()&0o222 == 0 {
		md.Attributes |= AttrReadOnly
	}
	d.Metadata = md
	return d
}

// 🔍 Lstat stats path without following a trailing symlink when the filesystem allows it
func Lstat(fs afero.Fs, path string) (os.FileInfo, error) {
	if lst, ok := fs.(afero.Lstater); ok {
		info, _, err := lst.LstatIfPossible(path)
		if err != nil {
			return nil, errors.Errorf("lstat %s: %w", path, err)
		}
		return info, nil
	}
	info, err := fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("stat %s: %w", path, err)
	}
	return info, nil
}

// Stat builds a descriptor for path with fresh metadata.
func Stat(fs afero.Fs, path string) (Descriptor, error) {
	info, err := Lstat(fs, path)
	if err != nil {
		return Descriptor{}, err
	}
	return New(path, info), nil
}

// Name returns the final path element.
func (d Descriptor) Name() string {
	return filepath.Base(d.Path)
}

// Kind returns KindUnknown when no metadata is attached.
func (d Descriptor) Kind() Kind {
	if d.Metadata == nil {
		return KindUnknown
	}
	return d.Metadata.Kind
}

func (d Descriptor) IsDir() bool  { return d.Kind() == KindDirectory }
func (d Descriptor) IsFile() bool { return d.Kind() == KindFile }
func (d Descriptor) IsLink() bool { return d.Kind() == KindLink }

// IsSysItem reports hidden and irregular items.
func (d Descriptor) IsSysItem() bool {
	if d.Metadata == nil {
		return false
	}
	return d.Metadata.Attributes&(AttrHidden|AttrSystem) != 0
}

// Equal compares identity, which is the path.
func (d Descriptor) Equal(other Descriptor) bool {
	return filepath.Clean(d.Path) == filepath.Clean(other.Path)
}

// Paths extracts the paths of a descriptor list.
func Paths(ds []Descriptor) []string {
	out := make([]string, len(ds))
	for i, d := range ds {
		out[i] = d.Path
	}
	return out
}
