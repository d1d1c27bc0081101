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
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser reads .hcl files
type HCLParser struct{}

func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// every attribute is optional so a file only has to name what it changes
type hclConfig struct {
	Search *struct {
		MaxDepth   *int     `hcl:"max_depth,optional"`
		MaxFinds   *int     `hcl:"max_finds,optional"`
		SkipErrors *bool    `hcl:"skip_errors,optional"`
		Exclude    []string `hcl:"exclude,optional"`
	} `hcl:"search,block"`
	Transfer *struct {
		ChunkSize  *int `hcl:"chunk_size,optional"`
		MaxWorkers *int `hcl:"max_workers,optional"`
	} `hcl:"transfer,block"`
	Server *struct {
		Addr *string `hcl:"addr,optional"`
	} `hcl:"server,block"`
	Log *struct {
		Level *string `hcl:"level,optional"`
	} `hcl:"log,block"`
}

// 📝 Parse decodes HCL blocks over the defaults
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "ferry.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var raw hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &raw)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	cfg := Default()
	if s := raw.Search; s != nil {
		if s.MaxDepth != nil {
			if *s.MaxDepth < 0 || *s.MaxDepth > 255 {
				return nil, errors.Errorf("%w: search.max_depth %d out of range 0..255", ErrInvalid, *s.MaxDepth)
			}
			cfg.Search.MaxDepth = uint8(*s.MaxDepth)
		}
		if s.MaxFinds != nil {
			cfg.Search.MaxFinds = *s.MaxFinds
		}
		if s.SkipErrors != nil {
			cfg.Search.SkipErrors = *s.SkipErrors
		}
		if s.Exclude != nil {
			cfg.Search.Exclude = s.Exclude
		}
	}
	if t := raw.Transfer; t != nil {
		if t.ChunkSize != nil {
			cfg.Transfer.ChunkSize = *t.ChunkSize
		}
		if t.MaxWorkers != nil {
			cfg.Transfer.MaxWorkers = *t.MaxWorkers
		}
	}
	if s := raw.Server; s != nil && s.Addr != nil {
		cfg.Server.Addr = *s.Addr
	}
	if l := raw.Log; l != nil && l.Level != nil {
		cfg.Log.Level = *l.Level
	}

	return cfg, nil
}
