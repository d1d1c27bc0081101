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

package opts

import (
	"github.com/spf13/afero"

	"github.com/walteh/ferry/pkg/config"
	"github.com/walteh/ferry/pkg/log"
	"github.com/walteh/ferry/pkg/metrics"
	"github.com/walteh/ferry/pkg/service"
	"github.com/walteh/ferry/pkg/transfer"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Fs      afero.Fs
	Config  *config.Config
	Console *log.Logger
	Metrics *metrics.Metrics
}

// NewService builds a service over the shared filesystem and config.
func (o *RootOpts) NewService() *service.Service {
	return service.New(service.Options{
		Fs:      o.Fs,
		Config:  o.Config,
		Metrics: o.Metrics,
	})
}

// NewTransferEngine builds a standalone transfer engine for one-shot commands.
func (o *RootOpts) NewTransferEngine() *transfer.Engine {
	return transfer.New(o.Fs, o.Config.Transfer.Options(), o.Metrics)
}
