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

package status

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/transfer"
)

// 🎨 Display configuration
const (
	entryIndent = 4  // spaces to indent found entries
	pathWidth   = 48 // base width for the path column
	kindWidth   = 10 // width for the kind column
)

// 🎯 FormatEntryLine formats one found item for display
func FormatEntryLine(d entry.Descriptor) string {
	kind := entry.KindUnknown
	size := ""
	if d.Metadata != nil {
		kind = d.Metadata.Kind
		if kind == entry.KindFile || kind == entry.KindLink {
			size = FormatBytes(d.Metadata.Size)
		}
	}

	var prefix string
	switch kind {
	case entry.KindFile:
		prefix = color.GreenString("•")
	case entry.KindDirectory:
		prefix = color.BlueString("▸")
	case entry.KindLink:
		prefix = color.CyanString("↪")
	case entry.KindSpecial:
		prefix = color.MagentaString("◇")
	default:
		prefix = color.HiBlackString("-")
	}

	return strings.TrimRight(fmt.Sprintf("%s%s %-*s %-*s %s",
		strings.Repeat(" ", entryIndent),
		prefix,
		pathWidth, d.Path,
		kindWidth, kind.String(),
		size,
	), " ")
}

// 🚚 FormatTransferLine formats a transfer snapshot on one line
func FormatTransferLine(kind transfer.Kind, p transfer.Progress) string {
	var phase string
	switch p.Phase {
	case transfer.PhaseTerminated:
		phase = color.GreenString(p.Phase.String())
	case transfer.PhaseFailed:
		phase = color.RedString(p.Phase.String())
	case transfer.PhaseCancelled:
		phase = color.YellowString(p.Phase.String())
	default:
		phase = color.CyanString(p.Phase.String())
	}

	line := fmt.Sprintf("%s %s %s/%s %s",
		kind.String(),
		phase,
		FormatBytes(p.Current),
		FormatBytes(p.Total),
		p.Elapsed.Round(1e6).String(),
	)
	if p.Err != nil {
		line += ": " + p.Err.Error()
	}
	return line
}

// FormatBytes renders n with a binary unit.
func FormatBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
