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

package inspect

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Tree renders a box-drawing tree of the given directory down to MaxDepth
// levels, skipping excluded names. Entries are lexicographically sorted at
// every level, so the output is deterministic for an unchanged tree. A
// directory whose entries cannot be read contributes one inline error line
// at its position without aborting the rest of the render.
func Tree(dir string, lim Limits) (string, error) {
	lim = lim.withDefaults()
	root, err := resolveDir(dir)
	if err != nil {
		return "", err
	}

	lines := []string{root + "/"}
	lines = append(lines, treeLevel(root, "", 0, lim)...)
	return strings.Join(lines, "\n"), nil
}

func treeLevel(path, prefix string, depth int, lim Limits) []string {
	if depth >= lim.MaxDepth {
		return nil
	}

	// os.ReadDir returns entries sorted by name.
	entries, err := os.ReadDir(path)
	if err != nil {
		return []string{fmt.Sprintf("%s[Error reading directory: %v]", prefix, err)}
	}

	kept := entries[:0]
	for _, entry := range entries {
		if !lim.Excluded(entry.Name()) {
			kept = append(kept, entry)
		}
	}

	var lines []string
	for i, entry := range kept {
		connector, childPrefix := "├── ", prefix+"│   "
		if i == len(kept)-1 {
			connector, childPrefix = "└── ", prefix+"    "
		}
		entryPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			lines = append(lines, fmt.Sprintf("%s%s%s/", prefix, connector, entry.Name()))
			lines = append(lines, treeLevel(entryPath, childPrefix, depth+1, lim)...)
			continue
		}
		if info, infoErr := entry.Info(); infoErr == nil {
			lines = append(lines, fmt.Sprintf("%s%s%s (%d bytes)", prefix, connector, entry.Name(), info.Size()))
		} else {
			lines = append(lines, fmt.Sprintf("%s%s%s", prefix, connector, entry.Name()))
		}
	}
	return lines
}
