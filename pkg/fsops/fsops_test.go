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

package fsops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/match"
	"github.com/walteh/ferry/pkg/testutils"
)

func setup(t *testing.T) (*Manager, afero.Fs) {
	fs := afero.NewMemMapFs()
	testutils.Tree(t, fs, "/w", map[string]string{
		"b.txt":      "bb",
		"a.txt":      "a",
		"dir/one":    "1",
		"dir/two":    "2",
		"dir/three/": "",
		"empty/":     "",
		".hidden":    "h",
	})
	return New(fs), fs
}

func TestChildren(t *testing.T) {
	ctx := testutils.Context(t)
	m, _ := setup(t)

	all, err := m.Children(ctx, "/w", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/w/.hidden", "/w/a.txt", "/w/b.txt", "/w/dir", "/w/empty"}, entry.Paths(all))

	for _, d := range all {
		switch d.Name() {
		case "dir":
			assert.Equal(t, uint64(3), d.Metadata.Size, "directory size is its child count")
		case "empty":
			assert.Equal(t, uint64(0), d.Metadata.Size)
		case "b.txt":
			assert.Equal(t, uint64(2), d.Metadata.Size)
		}
	}

	dirs, err := m.Children(ctx, "/w", &match.Filter{Dirs: true}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/w/dir", "/w/empty"}, entry.Paths(dirs))

	bySize, err := m.Children(ctx, "/w", &match.Filter{Files: true}, &Sort{Key: SortSize, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, "/w/b.txt", bySize[0].Path)

	byName, err := m.Children(ctx, "/w", nil, &Sort{Key: SortName, Descending: true})
	require.NoError(t, err)
	assert.Equal(t, "/w/empty", byName[0].Path)

	_, err = m.Children(ctx, "/w", nil, &Sort{Key: "color"})
	assert.ErrorIs(t, err, ErrUnknownKey)

	_, err = m.Children(ctx, "/w/a.txt", nil, nil)
	assert.ErrorIs(t, err, ErrNotDir)

	_, err = m.Children(ctx, "/nope", nil, nil)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSortByModified(t *testing.T) {
	ctx := testutils.Context(t)
	m, fs := setup(t)
	old := time.Now().Add(-time.Hour)
	require.NoError(t, fs.Chtimes("/w/b.txt", old, old))

	got, err := m.Children(ctx, "/w", &match.Filter{Files: true}, &Sort{Key: SortModified})
	require.NoError(t, err)
	assert.Equal(t, "/w/b.txt", got[0].Path)
}

func TestRename(t *testing.T) {
	ctx := testutils.Context(t)
	m, fs := setup(t)

	target, err := m.Rename(ctx, "/w/a.txt", "renamed.txt")
	require.NoError(t, err)
	assert.Equal(t, "/w/renamed.txt", target)

	b, err := afero.ReadFile(fs, target)
	require.NoError(t, err)
	assert.Equal(t, "a", string(b))

	for _, bad := range []string{"", ".", "..", "x/y", `x\y`} {
		_, err := m.Rename(ctx, "/w/b.txt", bad)
		assert.ErrorIs(t, err, ErrBadName, bad)
	}

	_, err = m.Rename(ctx, "/w/b.txt", "dir")
	assert.ErrorIs(t, err, ErrExists)
}

func TestCreateAndDelete(t *testing.T) {
	ctx := testutils.Context(t)
	m, fs := setup(t)

	require.NoError(t, m.CreateFile(ctx, "/w/new.txt"))
	assert.Error(t, m.CreateFile(ctx, "/w/new.txt"), "exclusive create")

	require.NoError(t, m.CreateDir(ctx, "/w/newdir"))
	assert.Error(t, m.CreateDir(ctx, "/w/newdir"), "directory already exists")

	require.NoError(t, m.Delete(ctx, []entry.Descriptor{entry.FromPath("/w/dir"), entry.FromPath("/w/new.txt")}))
	for _, p := range []string{"/w/dir", "/w/dir/one", "/w/new.txt"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.False(t, ok, p)
	}
}

func TestStat(t *testing.T) {
	ctx := testutils.Context(t)
	m, _ := setup(t)

	d, err := m.Stat(ctx, "/w/.hidden")
	require.NoError(t, err)
	assert.True(t, d.IsFile())
	assert.True(t, d.IsSysItem())
}

func TestReadLink(t *testing.T) {
	ctx := testutils.Context(t)
	dir := t.TempDir()
	require.NoError(t, os.Symlink("elsewhere", filepath.Join(dir, "l")))

	m := New(afero.NewOsFs())
	got, err := m.ReadLink(ctx, filepath.Join(dir, "l"))
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", got)

	_, err = New(afero.NewMemMapFs()).ReadLink(ctx, "/l")
	assert.ErrorIs(t, err, ErrNoLinks)
}

func TestWriteFileAtomic(t *testing.T) {
	ctx := testutils.Context(t)
	m, fs := setup(t)

	require.NoError(t, m.WriteFileAtomic(ctx, "/w/nested/deep/out.txt", []byte("content")))

	b, err := afero.ReadFile(fs, "/w/nested/deep/out.txt")
	require.NoError(t, err)
	assert.Equal(t, "content", string(b))

	ok, err := afero.Exists(fs, "/w/nested/deep/out.txt.tmp")
	require.NoError(t, err)
	assert.False(t, ok, "temp file should be gone")
}
