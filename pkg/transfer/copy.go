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
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
)

// copyEntry copies src into dstDir under the same name. Directory children are
// processed in order on the calling goroutine.
func (e *Engine) copyEntry(ctx context.Context, s *Session, src, dstDir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := entry.Lstat(e.fs, src)
	if err != nil {
		return errors.Errorf("copying: %w", err)
	}

	switch entry.KindOf(info.Mode()) {
	case entry.KindFile:
		return e.copyFile(ctx, s, src, info, dstDir)
	case entry.KindDirectory:
		return e.copyDir(ctx, s, src, info, dstDir)
	case entry.KindLink:
		return e.copyLink(s, src, info, dstDir)
	default:
		s.logger.Debug().Str("path", src).Msg("skipping special file")
		return nil
	}
}

func (e *Engine) copyDir(ctx context.Context, s *Session, src string, info os.FileInfo, dstDir string) error {
	target := filepath.Join(dstDir, info.Name())
	if err := e.ensureAbsent(target); err != nil {
		return err
	}
	if err := e.fs.Mkdir(target, info.Mode().Perm()|0o700); err != nil {
		return errors.Errorf("creating directory %s: %w", target, err)
	}

	children, err := afero.ReadDir(e.fs, src)
	if err != nil {
		return errors.Errorf("listing %s: %w", src, err)
	}
	for _, c := range children {
		if err := e.copyEntry(ctx, s, filepath.Join(src, c.Name()), target); err != nil {
			return err
		}
	}

	_ = e.fs.Chmod(target, info.Mode().Perm())
	_ = e.fs.Chtimes(target, info.ModTime(), info.ModTime())
	s.advance(FolderUnit)
	return nil
}

func (e *Engine) copyLink(s *Session, src string, info os.FileInfo, dstDir string) error {
	linker, ok := e.fs.(afero.Symlinker)
	if !ok {
		return errors.Errorf("%w: %s", ErrNoSymlinks, src)
	}

	dest, err := linker.ReadlinkIfPossible(src)
	if err != nil {
		return errors.Errorf("reading link %s: %w", src, err)
	}

	target := filepath.Join(dstDir, info.Name())
	if err := e.ensureAbsent(target); err != nil {
		return err
	}
	if err := linker.SymlinkIfPossible(dest, target); err != nil {
		return errors.Errorf("creating link %s: %w", target, err)
	}

	s.advance(uint64(max(info.Size(), 0)))
	return nil
}

// copyFile streams src into a hidden ".<name>.<random>" file next to the final
// target, advancing progress per chunk, and renames it into place when
// complete. The random suffix keeps the temp clear of a real ".<name>".
func (e *Engine) copyFile(ctx context.Context, s *Session, src string, info os.FileInfo, dstDir string) (err error) {
	name := info.Name()
	target := filepath.Join(dstDir, name)

	if err := e.ensureAbsent(target); err != nil {
		return err
	}

	in, err := e.fs.Open(src)
	if err != nil {
		return errors.Errorf("opening %s: %w", src, err)
	}
	defer in.Close()

	out, err := afero.TempFile(e.fs, dstDir, "."+name+".*")
	if err != nil {
		return errors.Errorf("creating temp file for %s: %w", target, err)
	}
	temp := out.Name()
	defer func() {
		if err != nil {
			out.Close()
			if rerr := e.fs.Remove(temp); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
				s.logger.Warn().Err(rerr).Str("temp", temp).Msg("leaving temp file behind")
			}
		}
	}()

	buf := make([]byte, e.opts.ChunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return errors.Errorf("writing %s: %w", temp, werr)
			}
			s.advance(uint64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errors.Errorf("reading %s: %w", src, rerr)
		}
	}

	if err := out.Close(); err != nil {
		return errors.Errorf("closing %s: %w", temp, err)
	}
	if err := e.fs.Chmod(temp, info.Mode().Perm()); err != nil {
		return errors.Errorf("setting mode on %s: %w", temp, err)
	}
	if err := e.ensureAbsent(target); err != nil {
		return err
	}
	if err := e.fs.Rename(temp, target); err != nil {
		return errors.Errorf("committing %s: %w", target, err)
	}

	_ = e.fs.Chtimes(target, info.ModTime(), info.ModTime())
	return nil
}
