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
Package transfer copies or moves a set of items into a destination directory
in the background while callers poll exact progress.

	Begin ──validate──> Initializing(total grows)
	                        │ size pass, one task per item
	                        v
	                    Active(total, current)
	                        │ one pooled worker per item, chunked copy
	                        v
	      Terminated | Failed(err) | Cancelled

Progress is measured in units: a file weighs its byte length, a symlink its
lstat size, and every directory one extra unit on top of its contents, so an
empty directory still moves the bar. A session only reports Terminated when
every measured unit was committed.

Each file is written to ".<name>" inside the destination and renamed into
place once complete. Existing destination entries are never overwritten.
*/
package transfer
