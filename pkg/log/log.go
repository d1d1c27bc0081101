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
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/ferry/pkg/entry"
	"github.com/walteh/ferry/pkg/registry"
	"github.com/walteh/ferry/pkg/status"
	"github.com/walteh/ferry/pkg/transfer"
)

// 🚚 TransferOperation describes a transfer for logging
type TransferOperation struct {
	ID          registry.ID
	Kind        transfer.Kind
	Items       []string
	Destination string
}

// 🎯 Logger pairs console output with structured logging
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.Formatter
	mu        sync.Mutex
	found     int
	current   *TransferOperation
}

// 🏭 New creates a new logger
func New(console io.Writer, level zerolog.Level) *Logger {
	zlog := zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger().Level(level)
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFormatter(),
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 🔍 LogEntries prints one row per found item
func (l *Logger) LogEntries(ctx context.Context, items []entry.Descriptor) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, d := range items {
		l.found++
		fmt.Fprintln(l.console, l.formatter.FormatEntry(d))
		l.zlog.Debug().Str("path", d.Path).Msg("found")
	}
}

// 📝 EndSearch prints the search summary and resets the counter
func (l *Logger) EndSearch(ctx context.Context, err error) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	found := l.found
	l.found = 0

	if err != nil {
		fmt.Fprintln(l.console, color.New(color.FgRed).Sprint(l.formatter.FormatError(err)))
		l.zlog.Error().Err(err).Int("found", found).Msg("search failed")
		return found
	}
	fmt.Fprintf(l.console, "%s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprintf("%d found", found))
	l.zlog.Info().Int("found", found).Msg("search complete")
	return found
}

// 📝 StartTransfer prints the transfer header
func (l *Logger) StartTransfer(ctx context.Context, op TransferOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op

	fmt.Fprintf(l.console, "[%s → %s]\n",
		op.Kind.String(),
		color.New(color.FgCyan).Sprint(op.Destination))
	for _, item := range op.Items {
		fmt.Fprintf(l.console, "    %s %s\n", color.New(color.Faint).Sprint("•"), item)
	}

	l.zlog.Info().
		Stringer("id", op.ID).
		Stringer("kind", op.Kind).
		Strs("items", op.Items).
		Str("destination", op.Destination).
		Msg("starting transfer")
}

// 📝 EndTransfer prints the final state of the current transfer
func (l *Logger) EndTransfer(ctx context.Context, p transfer.Progress) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	fmt.Fprintln(l.console, l.formatter.FormatTransfer(l.current.Kind, p))

	ev := l.zlog.Info()
	if p.Phase != transfer.PhaseTerminated {
		ev = l.zlog.Warn().AnErr("error", p.Err)
	}
	ev.Stringer("id", l.current.ID).
		Stringer("phase", p.Phase).
		Uint64("total", p.Total).
		Uint64("current", p.Current).
		Dur("elapsed", p.Elapsed).
		Msg("transfer finished")

	l.current = nil
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ferryText := color.New(color.Bold, color.FgCyan).Sprint("ferry")
	fmt.Fprintf(l.console, "\n%s %s\n\n", ferryText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

func (l *Logger) Warningf(format string, args ...any) {
	l.Warning(fmt.Sprintf(format, args...))
}

func (l *Logger) Errorf(format string, args ...any) {
	l.Error(fmt.Sprintf(format, args...))
}

func (l *Logger) Successf(format string, args ...any) {
	l.Success(fmt.Sprintf(format, args...))
}
