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
Package status turns engine state into console text.

	+-----------------+        +------------------+
	| search.Batch    |        | transfer.Progress|
	+-----------------+        +------------------+
	         |                          |
	         v                          v
	  FormatEntryLine          FormatTransferLine
	         \                          /
	          +-----> Formatter <------+
	                     |
	                     v
	                 pkg/log

🎯 Purpose:
- Render found items as aligned, colored rows
- Render transfer progress and terminal phases
- Humanize byte counts

Nothing here writes anywhere. Callers decide where the text goes.
*/
package status
