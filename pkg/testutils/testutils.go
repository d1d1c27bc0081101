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


// Package testutils builds file trees and logging contexts for tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// 🪵 Context returns a background context carrying a logger that writes to t.
func Context(t testing.TB) context.Context {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return logger.WithContext(context.Background())
}

// 🌳 Tree creates every entry under root on fs. Keys ending in "/" become
// directories; other keys become files holding the value.
func Tree(t testing.TB, fs afero.Fs, root string, entries map[string]string) {
	t.Helper()

	require.NoError(t, fs.MkdirAll(root, 0o755), "creating root")

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		path := filepath.Join(root, filepath.FromSlash(k))
		if strings.HasSuffix(k, "/") {
			require.NoError(t, fs.MkdirAll(path, 0o755), "creating dir %s", k)
			continue
		}
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0o755), "creating parent of %s", k)
		require.NoError(t, afero.WriteFile(fs, path, []byte(entries[k]), 0o644), "writing %s", k)
	}
}

// 📋 Snapshot lists every path below root (slash separated, relative) with
// file contents; directories map to "/".
func Snapshot(t testing.TB, fs afero.Fs, root string) map[string]string {
	t.Helper()

	out := map[string]string{}
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case info.IsDir():
			out[rel+"/"] = "/"
		case info.Mode()&os.ModeSymlink != 0:
			out[rel] = "@link"
		default:
			b, err := afero.ReadFile(fs, path)
			if err != nil {
				return err
			}
			out[rel] = string(b)
		}
		return nil
	})
	require.NoError(t, err, "walking %s", root)
	return out
}

// ⏳ Eventually polls cond until it holds, failing the test after a few seconds.
func Eventually(t testing.TB, cond func() bool, msg string) {
	t.Helper()
	require.Eventually(t, cond, 5*time.Second, 5*time.Millisecond, msg)
}
