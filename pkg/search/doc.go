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
Package search runs one recursive, filtered, depth-bounded file search at a
time and streams its findings to a caller that polls.

	        Search(opts)
	             |
	     +-------v-------+        Read()
	     |    session    |<------------------ caller
	     | budget | buf  |  drains buf, tags Active/Terminated
	     +-------+-------+
	             |
	      errgroup (one ctx)
	     /       |        \
	  walk()   walk()    walk()   one task per directory level
	     \       |        /
	      enqueue: budget--, cancel all at zero

🎯 Guarantees:
  - at most MaxFinds entries are ever reported
  - nothing deeper than Depth levels below the root is visited
  - every reported entry appears in exactly one batch
  - a new Search stops and joins the previous one before starting

Symbolic links are reported as links and never followed.
*/
package search
