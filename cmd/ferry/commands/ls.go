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
	"github.com/spf13/cobra"

	"github.com/walteh/ferry/cmd/ferry/opts"
	"github.com/walteh/ferry/pkg/fsops"
)

// NewListCmd creates the ls command
func NewListCmd(o *opts.RootOpts) *cobra.Command {
	var (
		types []string
		sort  string
		desc  bool
	)

	cmd := &cobra.Command{
		Use:   "ls DIR",
		Short: "List the direct children of DIR",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			filter, err := parseTypes(types)
			if err != nil {
				return err
			}
			var order *fsops.Sort
			if sort != "" {
				order = &fsops.Sort{Key: fsops.SortKey(sort), Descending: desc}
			}

			svc := o.NewService()
			defer svc.Close()

			items, err := svc.Children(ctx, args[0], &filter, order)
			if err != nil {
				return err
			}
			o.Console.LogEntries(ctx, items)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&types, "type", "t", []string{"files", "dirs", "links", "sys"}, "kinds to list: files, dirs, links, sys")
	cmd.Flags().StringVar(&sort, "sort", "", "sort key: name, modified, accessed or size")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")

	return cmd
}
