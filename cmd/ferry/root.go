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

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/cmd/ferry/opts"
	"github.com/walteh/ferry/pkg/config"
	"github.com/walteh/ferry/pkg/log"
	"github.com/walteh/ferry/pkg/metrics"
)

var (
	// Flags
	configFile string
	logLevel   string
	debug      bool
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml, .yml, .json, .hcl or .ferry)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override the configured log level")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// setup loads configuration and fills o, returning a context that carries
// the structured logger.
func setup(ctx context.Context, o *opts.RootOpts, console io.Writer) (context.Context, error) {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}

	cfg, err := loadConfig(ctx, o.Fs)
	if err != nil {
		return ctx, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return ctx, err
		}
	}

	level := cfg.Log.ZerologLevel()
	if debug {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	ctx = logger.WithContext(ctx)

	o.Config = cfg
	o.Metrics = metrics.New(nil)
	o.Console = log.New(console, level)

	return ctx, nil
}

func loadConfig(ctx context.Context, fs afero.Fs) (*config.Config, error) {
	if configFile == "" {
		cfg, err := config.FromEnv(ctx)
		if err != nil {
			return nil, errors.Errorf("reading environment: %w", err)
		}
		return cfg, nil
	}
	cfg, err := config.Load(ctx, fs, configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
