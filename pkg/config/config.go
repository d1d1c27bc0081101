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

package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/ferry/pkg/transfer"
)

// EnvPrefix prefixes every environment override, e.g. FERRY_SEARCH_MAX_FINDS.
const EnvPrefix = "FERRY"

var (
	ErrInvalid       = errors.Base("invalid configuration")
	ErrUnknownFormat = errors.Base("unsupported config file")
)

// 📝 Config is the root of all settings
type Config struct {
	Search   SearchConfig   `json:"search" yaml:"search"`
	Transfer TransferConfig `json:"transfer" yaml:"transfer"`
	Server   ServerConfig   `json:"server" yaml:"server"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// 🔍 SearchConfig holds defaults for searches that do not set their own
type SearchConfig struct {
	MaxDepth   uint8    `json:"max_depth" yaml:"max_depth" split_words:"true"`
	MaxFinds   int      `json:"max_finds" yaml:"max_finds" split_words:"true"`
	SkipErrors bool     `json:"skip_errors" yaml:"skip_errors" split_words:"true"`
	Exclude    []string `json:"exclude" yaml:"exclude" split_words:"true"`
}

// 🚚 TransferConfig tunes the transfer engine
type TransferConfig struct {
	ChunkSize  int `json:"chunk_size" yaml:"chunk_size" split_words:"true"`
	MaxWorkers int `json:"max_workers" yaml:"max_workers" split_words:"true"`
}

// Options converts to engine options.
func (c TransferConfig) Options() transfer.Options {
	return transfer.Options{ChunkSize: c.ChunkSize, MaxWorkers: c.MaxWorkers}
}

// 🌐 ServerConfig configures the HTTP polling API
type ServerConfig struct {
	Addr string `json:"addr" yaml:"addr" split_words:"true"`
}

// 🪵 LogConfig configures logging
type LogConfig struct {
	Level string `json:"level" yaml:"level" split_words:"true"`
}

// ZerologLevel parses Level; Validate guarantees it parses.
func (c LogConfig) ZerologLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

// 🏭 Default returns a config usable without any file
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			MaxDepth: 32,
			MaxFinds: 10000,
		},
		Transfer: TransferConfig{
			ChunkSize:  transfer.DefaultChunkSize,
			MaxWorkers: 8,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:7474",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// ✅ Validate checks every field
func (c *Config) Validate() error {
	var problems []string

	if c.Search.MaxFinds < 0 {
		problems = append(problems, "search.max_finds must not be negative")
	}
	for _, p := range c.Search.Exclude {
		if !doublestar.ValidatePattern(p) {
			problems = append(problems, "search.exclude has invalid pattern "+p)
		}
	}
	if c.Transfer.ChunkSize <= 0 {
		problems = append(problems, "transfer.chunk_size must be positive")
	}
	if c.Transfer.MaxWorkers < 0 {
		problems = append(problems, "transfer.max_workers must not be negative")
	}
	if strings.TrimSpace(c.Server.Addr) == "" {
		problems = append(problems, "server.addr is required")
	}
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, "log.level "+err.Error())
	}

	if len(problems) > 0 {
		return errors.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// 🌱 ApplyEnv overlays FERRY_* variables onto c
func (c *Config) ApplyEnv() error {
	if err := envconfig.Process(EnvPrefix, c); err != nil {
		return errors.Errorf("reading environment: %w", err)
	}
	return nil
}

// 🔌 Parser turns file bytes into a Config seeded with defaults
type Parser interface {
	Parse(ctx context.Context, data []byte) (*Config, error)
	CanParse(filename string) bool
}

var parsers []Parser

// Register adds a parser; earlier registrations win.
func Register(p Parser) {
	parsers = append(parsers, p)
}

// GetParser returns the first parser accepting filename, or nil.
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📂 Load reads path from fs, applies environment overrides and validates.
// A ".ferry" file may hold either YAML or HCL.
func Load(ctx context.Context, fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	cfg, err := parse(ctx, filepath.Base(path), data)
	if err != nil {
		return nil, err
	}
	return finish(ctx, cfg)
}

// FromEnv builds a config from defaults and the environment only.
func FromEnv(ctx context.Context) (*Config, error) {
	return finish(ctx, Default())
}

func parse(ctx context.Context, name string, data []byte) (*Config, error) {
	if filepath.Ext(name) == ".ferry" || name == ".ferry" {
		cfg, yerr := (&YAMLParser{}).Parse(ctx, data)
		if yerr == nil {
			return cfg, nil
		}
		cfg, herr := (&HCLParser{}).Parse(ctx, data)
		if herr == nil {
			return cfg, nil
		}
		return nil, errors.Errorf("parsing %s as YAML (%s) or HCL: %w", name, yerr.Error(), herr)
	}

	p := GetParser(name)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrUnknownFormat, name)
	}
	return p.Parse(ctx, data)
}

func finish(ctx context.Context, cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().
		Str("addr", cfg.Server.Addr).
		Int("chunk_size", cfg.Transfer.ChunkSize).
		Int("max_workers", cfg.Transfer.MaxWorkers).
		Msg("configuration loaded")
	return cfg, nil
}
