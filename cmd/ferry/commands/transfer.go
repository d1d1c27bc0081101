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

package commands

import (
	"context"
	"io"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/cmd/ferry/opts"
	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/log"
	"github.com/walteh/ferry/pkg/transfer"
)

// NewCopyCmd creates the copy command
func NewCopyCmd(o *opts.RootOpts) *cobra.Command {
	return newTransferCmd(o, transfer.KindCopy, "copy SRC... DST", "Copy items into the directory DST")
}

// NewMoveCmd creates the move command
func NewMoveCmd(o *opts.RootOpts) *cobra.Command {
	return newTransferCmd(o, transfer.KindMove, "move SRC... DST", "Move items into the directory DST")
}

func newTransferCmd(o *opts.RootOpts, kind transfer.Kind, use, short string) *cobra.Command {
	var progress bool

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `.

Nothing in DST is ever overwritten: the first name that already exists
fails the transfer. Interrupting the command cancels it, leaving whatever
was completed in place.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			srcs, dst := args[:len(args)-1], args[len(args)-1]
			items := make([]entry.Descriptor, 0, len(srcs))
			for _, src := range srcs {
				items = append(items, entry.FromPath(src))
			}

			engine := o.NewTransferEngine()
			defer engine.Close()

			id, err := engine.Begin(ctx, transfer.Request{Items: items, Destination: dst, Kind: kind})
			if err != nil {
				return errors.Errorf("starting %s: %w", kind, err)
			}
			sess, ok := engine.Get(id)
			if !ok {
				return errors.Errorf("session %s vanished", id)
			}

			o.Console.StartTransfer(ctx, log.TransferOperation{
				ID:          id,
				Kind:        kind,
				Items:       sess.Items(),
				Destination: sess.Destination(),
			})

			var out io.Writer
			if progress {
				out = cmd.ErrOrStderr()
			}
			final := follow(ctx, sess, out)

			o.Console.EndTransfer(ctx, final)
			if final.Phase == transfer.PhaseTerminated {
				return nil
			}
			if final.Err != nil {
				return final.Err
			}
			return errors.Errorf("%s %s", kind, final.Phase)
		},
	}

	cmd.Flags().BoolVarP(&progress, "progress", "p", true, "draw a progress bar on stderr")

	return cmd
}

// follow polls sess until it reaches a terminal phase, cancelling it when ctx
// ends and drawing a bar on out when out is set.
func follow(ctx context.Context, sess *transfer.Session, out io.Writer) transfer.Progress {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var bar *pterm.ProgressbarPrinter
	defer func() {
		if bar != nil {
			_, _ = bar.Stop()
		}
	}()

	var shown uint64
	interrupted := ctx.Done()
	for {
		select {
		case <-interrupted:
			sess.Cancel()
			interrupted = nil
		case <-sess.Done():
			return sess.Snapshot()
		case <-ticker.C:
		}

		p := sess.Snapshot()
		if out == nil || p.Phase != transfer.PhaseActive || p.Total == 0 {
			continue
		}
		if bar == nil {
			started, err := pterm.DefaultProgressbar.
				WithTotal(int(p.Total)).
				WithTitle(sess.Kind().String()).
				WithWriter(out).
				Start()
			if err != nil {
				out = nil
				continue
			}
			bar = started
		}
		if p.Current > shown {
			bar.Add(int(p.Current - shown))
			shown = p.Current
		}
	}
}
