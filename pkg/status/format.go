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

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/transfer"
)

// Formatter defines how search and transfer output is rendered
type Formatter interface {
	// FormatEntry formats a found item
	FormatEntry(d entry.Descriptor) string

	// FormatProgress formats a progress message
	FormatProgress(current, total uint64) string

	// FormatTransfer formats a transfer snapshot
	FormatTransfer(kind transfer.Kind, p transfer.Progress) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter is the console Formatter.
type DefaultFormatter struct{}

func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

func (f *DefaultFormatter) FormatEntry(d entry.Descriptor) string {
	return FormatEntryLine(d)
}

func (f *DefaultFormatter) FormatTransfer(kind transfer.Kind, p transfer.Progress) string {
	return FormatTransferLine(kind, p)
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total uint64) string {
	var percentage float64
	if total == 0 {
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
