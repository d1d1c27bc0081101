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
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/ferry/pkg/testutils"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		file        string
		config      string
		wantErr     error
		errContains string
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name: "yaml_full",
			file: "ferry.yaml",
			config: `
search:
  max_depth: 4
  max_finds: 50
  skip_errors: true
  exclude: ["**/.git", "node_modules"]
transfer:
  chunk_size: 4096
  max_workers: 2
server:
  addr: ":9000"
log:
  level: debug
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, uint8(4), cfg.Search.MaxDepth)
				assert.Equal(t, 50, cfg.Search.MaxFinds)
				assert.True(t, cfg.Search.SkipErrors)
				assert.Equal(t, []string{"**/.git", "node_modules"}, cfg.Search.Exclude)
				assert.Equal(t, 4096, cfg.Transfer.ChunkSize)
				assert.Equal(t, 2, cfg.Transfer.Options().MaxWorkers)
				assert.Equal(t, ":9000", cfg.Server.Addr)
				assert.Equal(t, zerolog.DebugLevel, cfg.Log.ZerologLevel())
			},
		},
		{
			name:   "yaml_empty_keeps_defaults",
			file:   "ferry.yml",
			config: ``,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name:        "yaml_unknown_field",
			file:        "ferry.yaml",
			config:      "search:\n  colour: blue\n",
			errContains: "parsing YAML",
		},
		{
			name: "hcl_partial",
			file: "ferry.hcl",
			config: `
search {
  max_finds = 7
  exclude   = ["*.tmp"]
}
transfer {
  chunk_size = 16
}
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7, cfg.Search.MaxFinds)
				assert.Equal(t, []string{"*.tmp"}, cfg.Search.Exclude)
				assert.Equal(t, uint8(32), cfg.Search.MaxDepth, "unset values keep defaults")
				assert.Equal(t, 16, cfg.Transfer.ChunkSize)
				assert.Equal(t, "info", cfg.Log.Level)
			},
		},
		{
			name:    "hcl_depth_out_of_range",
			file:    "ferry.hcl",
			config:  "search {\n  max_depth = 300\n}\n",
			wantErr: ErrInvalid,
		},
		{
			name:   "json",
			file:   "ferry.json",
			config: `{"server": {"addr": "0.0.0.0:1"}, "transfer": {"max_workers": 0}}`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "0.0.0.0:1", cfg.Server.Addr)
				assert.Equal(t, 0, cfg.Transfer.MaxWorkers)
			},
		},
		{
			name:        "json_unknown_field",
			file:        "ferry.json",
			config:      `{"nope": 1}`,
			errContains: "parsing JSON",
		},
		{
			name:   "dotfile_yaml",
			file:   ".ferry",
			config: "log:\n  level: warn\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, zerolog.WarnLevel, cfg.Log.ZerologLevel())
			},
		},
		{
			name:   "dotfile_hcl",
			file:   ".ferry",
			config: "log {\n  level = \"error\"\n}\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "error", cfg.Log.Level)
			},
		},
		{
			name:    "unknown_extension",
			file:    "ferry.toml",
			config:  "x = 1",
			wantErr: ErrUnknownFormat,
		},
		{
			name:    "validation_failure",
			file:    "ferry.yaml",
			config:  "transfer:\n  chunk_size: 0\nlog:\n  level: loud\n",
			wantErr: ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutils.Context(t)
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, "/cfg/"+tt.file, []byte(tt.config), 0o644))

			cfg, err := Load(ctx, fs, "/cfg/"+tt.file)
			if tt.wantErr != nil || tt.errContains != "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				if tt.errContains != "" {
					assert.Contains(t, err.Error(), tt.errContains)
				}
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	ctx := testutils.Context(t)
	t.Setenv("FERRY_SEARCH_MAX_FINDS", "3")
	t.Setenv("FERRY_SEARCH_EXCLUDE", "a,b/**")
	t.Setenv("FERRY_TRANSFER_MAX_WORKERS", "1")
	t.Setenv("FERRY_SERVER_ADDR", "localhost:1234")

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ferry.yaml", []byte("search:\n  max_finds: 100\n"), 0o644))

	cfg, err := Load(ctx, fs, "ferry.yaml")
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Search.MaxFinds, "environment beats file")
	assert.Equal(t, []string{"a", "b/**"}, cfg.Search.Exclude)
	assert.Equal(t, 1, cfg.Transfer.MaxWorkers)
	assert.Equal(t, "localhost:1234", cfg.Server.Addr)

	fromEnv, err := FromEnv(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, fromEnv.Search.MaxFinds)
}

func TestEnvBadValue(t *testing.T) {
	t.Setenv("FERRY_TRANSFER_CHUNK_SIZE", "lots")
	_, err := FromEnv(testutils.Context(t))
	assert.Error(t, err)
}

func TestMissingFile(t *testing.T) {
	_, err := Load(testutils.Context(t), afero.NewMemMapFs(), "/nope.yaml")
	assert.ErrorContains(t, err, "reading config file")
}
