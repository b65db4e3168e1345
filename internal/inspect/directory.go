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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// ListDirectories reports every subdirectory up to MaxDepth levels below the
// given directory, skipping excluded names. The root itself counts as depth
// zero and is always named in the header line.
func ListDirectories(dir string, lim Limits) (string, error) {
	lim = lim.withDefaults()
	root, err := resolveDir(dir)
	if err != nil {
		return "", err
	}

	lines := []string{fmt.Sprintf("Root Directory: %s", root)}
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() || path == root {
			return nil
		}
		if lim.Excluded(entry.Name()) {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		depth := strings.Count(rel, string(filepath.Separator)) + 1
		if depth > lim.MaxDepth {
			return filepath.SkipDir
		}
		lines = append(lines, fmt.Sprintf("Directory: %s", path))
		if depth == lim.MaxDepth {
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeReadFailure, "Failed to list directory", err)
	}

	if len(lines) <= 1 {
		return fmt.Sprintf("Only found the root directory: %s. No subdirectories found.", root), nil
	}
	return strings.Join(lines, "\n"), nil
}

// ListFiles reports the regular files directly inside the given directory,
// each annotated with its byte size, capped at MaxFiles entries. When more
// files exist than the cap, a single truncation notice replaces the rest.
func ListFiles(dir string, lim Limits) (string, error) {
	lim = lim.withDefaults()
	root, err := resolveDir(dir)
	if err != nil {
		return "", err
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeReadFailure, "Failed to list files", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if len(files) >= lim.MaxFiles {
			files = append(files, fmt.Sprintf("... (more files exist but limited to %d for display)", lim.MaxFiles))
			break
		}
		path := filepath.Join(root, entry.Name())
		if info, infoErr := entry.Info(); infoErr == nil {
			files = append(files, fmt.Sprintf("File: %s (%d bytes)", path, info.Size()))
		} else {
			files = append(files, fmt.Sprintf("File: %s", path))
		}
	}

	if len(files) == 0 {
		return fmt.Sprintf("No files found in %s", root), nil
	}
	return fmt.Sprintf("Files in %s:\n%s", root, strings.Join(files, "\n")), nil
}
