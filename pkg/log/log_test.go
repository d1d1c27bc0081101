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

package log

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/registry"
	"github.com/walteh/ferry/pkg/transfer"
)

func TestLogger(t *testing.T) {
	// Disable color for testing
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name     string
		op       func(t *testing.T, logger *Logger)
		wantLogs []string
	}{
		{
			name: "log_entries_and_summary",
			op: func(t *testing.T, logger *Logger) {
				logger.LogEntries(context.Background(), []entry.Descriptor{
					{Path: "/r/a.go", Metadata: &entry.Metadata{Kind: entry.KindFile, Size: 10}},
					{Path: "/r/sub", Metadata: &entry.Metadata{Kind: entry.KindDirectory}},
				})
				assert.Equal(t, 2, logger.EndSearch(context.Background(), nil))
			},
			wantLogs: []string{
				"• /r/a.go                                          file       10 B",
				"▸ /r/sub                                           directory",
				"◆ 2 found",
			},
		},
		{
			name: "search_failure",
			op: func(t *testing.T, logger *Logger) {
				logger.LogEntries(context.Background(), []entry.Descriptor{entry.FromPath("/r/x")})
				assert.Equal(t, 1, logger.EndSearch(context.Background(), errors.New("root unreadable")))
				assert.Equal(t, 0, logger.EndSearch(context.Background(), nil), "counter resets")
			},
			wantLogs: []string{
				"- /r/x                                             unknown",
				"❌ Error: root unreadable",
				"◆ 0 found",
			},
		},
		{
			name: "log_transfer",
			op: func(t *testing.T, logger *Logger) {
				logger.StartTransfer(context.Background(), TransferOperation{
					ID:          registry.ID{Slot: 0, Nonce: 1},
					Kind:        transfer.KindCopy,
					Items:       []string{"/src/a", "/src/b"},
					Destination: "/dst",
				})
				logger.EndTransfer(context.Background(), transfer.Progress{
					Phase:   transfer.PhaseTerminated,
					Total:   20,
					Current: 20,
					Elapsed: 2 * time.Second,
				})
				logger.EndTransfer(context.Background(), transfer.Progress{})
			},
			wantLogs: []string{
				"[copy → /dst]",
				"• /src/a",
				"• /src/b",
				"copy terminated 20 B/20 B 2s",
			},
		},
		{
			name: "log_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("info message")
				logger.Warning("warning message")
				logger.Error("error message")
				logger.Success("success message")
			},
			wantLogs: []string{
				"ℹ️  info message",
				"⚠️  warning message",
				"❌ error message",
				"✅ success message",
			},
		},
		{
			name: "log_formatted_messages",
			op: func(t *testing.T, logger *Logger) {
				logger.Infof("info %s", "test")
				logger.Warningf("warning %s", "test")
				logger.Errorf("error %s", "test")
				logger.Successf("success %s", "test")
			},
			wantLogs: []string{
				"ℹ️  info test",
				"⚠️  warning test",
				"❌ error test",
				"✅ success test",
			},
		},
		{
			name: "log_header",
			op: func(t *testing.T, logger *Logger) {
				logger.Header("searching /r")
			},
			wantLogs: []string{
				"ferry • searching /r",
			},
		},
		{
			name: "log_newline",
			op: func(t *testing.T, logger *Logger) {
				logger.Info("first")
				logger.LogNewline()
				logger.Info("second")
			},
			wantLogs: []string{
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.InfoLevel)

			tt.op(t, logger)

			output := strings.TrimSpace(buf.String())
			lines := strings.Split(output, "\n")

			require.Equal(t, len(tt.wantLogs), len(lines), "number of log lines should match: %q", output)
			for i, want := range tt.wantLogs {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "log line %d should match", i)
			}
		})
	}
}

func TestLoggerContext(t *testing.T) {
	logger := New(io.Discard, zerolog.InfoLevel)

	ctx := NewContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx), "logger from context should be the same instance")

	assert.Panics(t, func() {
		FromContext(context.Background())
	}, "FromContext should panic when logger is missing")
}
