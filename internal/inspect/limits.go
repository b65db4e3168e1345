// Copyright (C) 2025 Dyne.org foundation
// designed, written and maintained by Denis Roio <jaromil@dyne.org>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package inspect implements the read-only filesystem inspection operations
// exposed to the analysis agent: directory listing, file listing, tree
// rendering and bounded file viewing. Every operation takes the raw path
// string as the model produced it, sanitizes it, validates it, and reports
// failure as a coded error value; nothing in this package writes to the
// filesystem or panics on malformed input.
package inspect

// Limits bounds traversal depth, entry counts and read sizes for all
// inspection operations.
type Limits struct {
	ExcludeNames       []string `json:"exclude_names,omitempty"`
	MaxDepth           int      `json:"max_depth,omitempty"`
	MaxFiles           int      `json:"max_files,omitempty"`
	MaxFileBytes       int64    `json:"max_file_bytes,omitempty"`
	MaxLinesPerRequest int      `json:"max_lines_per_request,omitempty"`
}

const (
	defaultMaxDepth           = 2
	defaultMaxFiles           = 50
	defaultMaxFileBytes int64 = 100_000
	defaultMaxLines           = 100
)

// defaultExcludeNames are conventional tooling directories that clutter
// listings: version control, virtual environments, dependency and bytecode
// caches, plus macOS metadata droppings.
var defaultExcludeNames = []string{
	"venv", "env", "node_modules", ".git", "__pycache__",
	".venv", "vtm_venv", ".pytest_cache", ".DS_Store",
}

// DefaultLimits returns the demo limits used when a field is unset.
func DefaultLimits() Limits {
	return Limits{
		ExcludeNames:       append([]string(nil), defaultExcludeNames...),
		MaxDepth:           defaultMaxDepth,
		MaxFiles:           defaultMaxFiles,
		MaxFileBytes:       defaultMaxFileBytes,
		MaxLinesPerRequest: defaultMaxLines,
	}
}

// withDefaults fills empty or non-positive fields with the default limits.
func (l Limits) withDefaults() Limits {
	if len(l.ExcludeNames) == 0 {
		l.ExcludeNames = append([]string(nil), defaultExcludeNames...)
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = defaultMaxDepth
	}
	if l.MaxFiles <= 0 {
		l.MaxFiles = defaultMaxFiles
	}
	if l.MaxFileBytes <= 0 {
		l.MaxFileBytes = defaultMaxFileBytes
	}
	if l.MaxLinesPerRequest <= 0 {
		l.MaxLinesPerRequest = defaultMaxLines
	}
	return l
}

// Excluded reports whether a name is in the exclusion set.
func (l Limits) Excluded(name string) bool {
	for _, excluded := range l.ExcludeNames {
		if name == excluded {
			return true
		}
	}
	return false
}
