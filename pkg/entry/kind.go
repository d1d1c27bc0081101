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

package entry

import (
	"os"

	"gitlab.com/tozd/go/errors"
)

// 🏷️ Kind classifies an item by its lstat mode
type Kind int

const (
	KindUnknown Kind = iota
	KindFile
	KindDirectory
	KindLink
	KindSpecial
)

// KindOf maps a file mode to a Kind. Links are reported as links, never as
// their target.
func KindOf(mode os.FileMode) Kind {
	switch {
	case mode&os.ModeSymlink != 0:
		return KindLink
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindSpecial
	}
}

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	case KindLink:
		return "link"
	case KindSpecial:
		return "special"
	default:
		return "unknown"
	}
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "file":
		*k = KindFile
	case "directory":
		*k = KindDirectory
	case "link":
		*k = KindLink
	case "special":
		*k = KindSpecial
	case "unknown", "":
		*k = KindUnknown
	default:
		return errors.Errorf("unknown kind %q", string(text))
	}
	return nil
}
