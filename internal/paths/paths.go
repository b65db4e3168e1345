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

// Package paths normalizes filesystem paths emitted by a language model.
// Model output routinely wraps a path argument in fenced code blocks,
// backticks or stray newlines; Normalize strips those artifacts before
// resolving the path, so the filesystem layer never sees them.
package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"unicode/utf8"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

var (
	fenceMarkers  = regexp.MustCompile("(?s)^\\s*```(?:json|python|text|sh|bash|plaintext)?\\s*|\\s*```\\s*$")
	strayArtifact = regexp.MustCompile("[\n`]")
)

// Clean strips model-generated formatting artifacts from a raw path string:
// surrounding fenced-code markers (optionally tagged with a language hint),
// embedded newlines and backticks, and surrounding whitespace.
func Clean(raw string) string {
	cleaned := fenceMarkers.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = strayArtifact.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

// Normalize cleans a raw path string and resolves it to an absolute path,
// expanding a leading ~ to the user home directory. On failure it returns a
// path_resolution error carrying the cleaned string and the underlying cause;
// it never panics on malformed input.
func Normalize(raw string) (string, error) {
	cleaned := Clean(raw)

	if err := validateCleaned(cleaned); err != nil {
		return "", resolutionError(cleaned, err)
	}

	expanded, err := expandHome(cleaned)
	if err != nil {
		return "", resolutionError(cleaned, err)
	}

	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", resolutionError(cleaned, err)
	}
	return abs, nil
}

func validateCleaned(cleaned string) error {
	if cleaned == "" {
		return fmt.Errorf("path is empty")
	}
	if strings.IndexByte(cleaned, 0) != -1 {
		return fmt.Errorf("path contains null byte")
	}
	if !utf8.ValidString(cleaned) {
		return fmt.Errorf("path is not valid UTF-8")
	}
	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~"+string(os.PathSeparator)) && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %v", err)
	}
	if path == "~" {
		return home, nil
	}
	return filepath.Join(home, path[2:]), nil
}

func resolutionError(cleaned string, cause error) error {
	return apperrors.Wrapf(apperrors.CodePathResolution, cause, "Could not normalize path '%s'", cleaned)
}
