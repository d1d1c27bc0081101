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
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/cmd/ferry/opts"
	"github.com/walteh/ferry/pkg/match"
	"github.com/walteh/ferry/pkg/search"
	"github.com/walteh/ferry/pkg/service"
)

// pollInterval is how often the CLI drains a running search or transfer.
var pollInterval = 50 * time.Millisecond

// NewSearchCmd creates the search command
func NewSearchCmd(o *opts.RootOpts) *cobra.Command {
	var (
		kind          string
		caseSensitive bool
		depth         uint8
		maxFinds      int
		skipErrors    bool
		exclude       []string
		types         []string
	)

	cmd := &cobra.Command{
		Use:   "search ROOT PATTERN",
		Short: "Find items under ROOT whose names match PATTERN",
		Long: `Search walks ROOT concurrently and prints every item whose name matches
PATTERN as soon as it is found. Interrupting the command terminates the
search and still prints what was found up to that point.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mk, err := match.ParseKind(kind)
			if err != nil {
				return err
			}
			filter, err := parseTypes(types)
			if err != nil {
				return err
			}

			req := service.SearchRequest{
				Root:    args[0],
				Filter:  filter,
				Match:   match.Spec{Kind: mk, Pattern: args[1], CaseSensitive: caseSensitive},
				Exclude: exclude,
			}
			if cmd.Flags().Changed("depth") {
				req.MaxDepth = &depth
			}
			if cmd.Flags().Changed("max-finds") {
				req.MaxFinds = &maxFinds
			}
			if cmd.Flags().Changed("skip-errors") {
				req.SkipErrors = &skipErrors
			}

			svc := o.NewService()
			defer svc.Close()

			if err := svc.Search(ctx, req); err != nil {
				return errors.Errorf("starting search: %w", err)
			}

			o.Console.Header("searching " + args[0])

			ticker := time.NewTicker(pollInterval)
			defer ticker.Stop()
			interrupted := ctx.Done()
			for {
				select {
				case <-interrupted:
					svc.TerminateSearch()
					interrupted = nil
				case <-ticker.C:
				}

				msg := svc.SearchMessage()
				o.Console.LogEntries(ctx, msg.Items)
				if msg.State != search.StateTerminated {
					continue
				}

				var failure error
				if msg.Error != "" {
					failure = errors.New(msg.Error)
				}
				o.Console.EndSearch(ctx, failure)
				return failure
			}
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", match.Substring.String(), "match kind: regex, prefix, suffix, substring or glob")
	cmd.Flags().BoolVarP(&caseSensitive, "case-sensitive", "s", false, "match case exactly")
	cmd.Flags().Uint8VarP(&depth, "depth", "d", 0, "levels to descend, 1 means ROOT's children only (default from config)")
	cmd.Flags().IntVarP(&maxFinds, "max-finds", "n", 0, "stop after this many results (default from config)")
	cmd.Flags().BoolVar(&skipErrors, "skip-errors", false, "skip unreadable directories instead of failing")
	cmd.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "doublestar patterns, relative to ROOT, to leave out")
	cmd.Flags().StringSliceVarP(&types, "type", "t", []string{"files", "dirs", "links"}, "kinds to report: files, dirs, links, sys")

	return cmd
}

func parseTypes(types []string) (match.Filter, error) {
	var f match.Filter
	for _, t := range types {
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "files", "file", "f":
			f.Files = true
		case "dirs", "dir", "d":
			f.Dirs = true
		case "links", "link", "l":
			f.Links = true
		case "sys", "sys_items", "s":
			f.SysItems = true
		default:
			return match.Filter{}, errors.Errorf("unknown type %q", t)
		}
	}
	return f, nil
}
