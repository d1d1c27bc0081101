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
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/ferry/pkg/entry"
)

// measure sizes every item concurrently, growing the session total as it
// goes, and returns per-item weights.
func (e *Engine) measure(s *Session) ([]uint64, error) {
	weights := make([]uint64, len(s.items))

	g, gctx := errgroup.WithContext(s.ctx)
	for i, src := range s.items {
		g.Go(func() error {
			w, err := e.weigh(gctx, s, src)
			weights[i] = w
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return weights, nil
}

func (e *Engine) weigh(ctx context.Context, s *Session, path string) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := entry.Lstat(e.fs, path)
	if err != nil {
		return 0, errors.Errorf("measuring: %w", err)
	}

	switch entry.KindOf(info.Mode()) {
	case entry.KindFile, entry.KindLink:
		n := uint64(max(info.Size(), 0))
		s.addTotal(n)
		return n, nil
	case entry.KindDirectory:
		s.addTotal(FolderUnit)
		total := FolderUnit

		children, err := afero.ReadDir(e.fs, path)
		if err != nil {
			return 0, errors.Errorf("measuring %s: %w", path, err)
		}
		for _, c := range children {
			w, err := e.weigh(ctx, s, filepath.Join(path, c.Name()))
			if err != nil {
				return 0, err
			}
			total += w
		}
		return total, nil
	default:
		return 0, nil
	}
}
