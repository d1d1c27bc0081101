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


/*
Package config loads ferry's settings from a file and the environment.

	 ferry.yaml / .hcl / .json / .ferry
	              |
	        +-----v-----+
	        |  Parser   |  chosen by file name
	        +-----+-----+
	              |
	     FERRY_* environment
	              |
	        +-----v-----+
	        | Validate  |
	        +-----------+

🎯 Purpose:
- One Config for the engines, the HTTP server and logging
- Defaults for everything, so an empty file is valid
- Environment overrides for containers and CI

🔍 Example:

	cfg, err := config.Load(ctx, afero.NewOsFs(), "ferry.yaml")
	if err != nil {
		return err
	}
	engine := transfer.New(fs, cfg.Transfer.Options(), nil)
*/
package config
