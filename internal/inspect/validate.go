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
	"os"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
	"github.com/lukashino/defcon-llm-analysis/internal/paths"
)

// resolveDir sanitizes a raw path string and validates that it names an
// existing directory. Each precondition fails with its own coded error.
func resolveDir(raw string) (string, error) {
	normalized, err := paths.Normalize(raw)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(normalized)
	if err != nil {
		return "", apperrors.Newf(apperrors.CodeNotFound, "Directory does not exist: %s", normalized)
	}
	if !info.IsDir() {
		return "", apperrors.Newf(apperrors.CodeWrongType, "Path exists but is not a directory: %s", normalized)
	}
	return normalized, nil
}

// resolveFile sanitizes a raw path string and validates that it names an
// existing regular file.
func resolveFile(raw string) (string, os.FileInfo, error) {
	normalized, err := paths.Normalize(raw)
	if err != nil {
		return "", nil, err
	}
	info, err := os.Stat(normalized)
	if err != nil {
		return "", nil, apperrors.Newf(apperrors.CodeNotFound, "File does not exist: %s", normalized)
	}
	if !info.Mode().IsRegular() {
		return "", nil, apperrors.Newf(apperrors.CodeWrongType, "Path exists but is not a file: %s", normalized)
	}
	return normalized, info, nil
}
