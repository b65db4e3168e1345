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
	"strings"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// ViewFile returns the full text content of a file together with its path
// and byte size. Files larger than MaxFileBytes are refused with guidance to
// use the line-range viewer; a file of exactly MaxFileBytes is served.
// Invalid byte sequences are replaced, never raised.
func ViewFile(path string, lim Limits) (string, error) {
	lim = lim.withDefaults()
	normalized, info, err := resolveFile(path)
	if err != nil {
		return "", err
	}

	if info.Size() > lim.MaxFileBytes {
		return "", apperrors.Newf(apperrors.CodeSizeLimit,
			"File is too large (%d bytes > %d bytes). Use view_file_lines for large files.",
			info.Size(), lim.MaxFileBytes)
	}

	data, err := os.ReadFile(normalized)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.CodeReadFailure, err, "Failed to read file '%s'", normalized)
	}
	content := strings.ToValidUTF8(string(data), "\uFFFD")

	return fmt.Sprintf("File: %s\nSize: %d bytes\n\nContent:\n%s", normalized, info.Size(), content), nil
}

// ViewFileLines returns an inclusive, 1-indexed line range of a file, each
// line prefixed with its right-aligned line number. The requested end is
// clamped to the file's length; a start beyond the end of the file is an
// error reporting the actual total.
func ViewFileLines(path string, startLine, endLine int, lim Limits) (string, error) {
	lim = lim.withDefaults()
	normalized, _, err := resolveFile(path)
	if err != nil {
		return "", err
	}

	if startLine < 1 {
		return "", apperrors.Newf(apperrors.CodeRangeValidation, "Start line must be >= 1, got %d", startLine)
	}
	if endLine < startLine {
		return "", apperrors.Newf(apperrors.CodeRangeValidation, "End line (%d) must be >= start line (%d)", endLine, startLine)
	}
	if span := endLine - startLine + 1; span > lim.MaxLinesPerRequest {
		return "", apperrors.Newf(apperrors.CodeRangeValidation,
			"Too many lines requested (%d). Maximum %d lines per request.", span, lim.MaxLinesPerRequest)
	}

	data, err := os.ReadFile(normalized)
	if err != nil {
		return "", apperrors.Wrapf(apperrors.CodeReadFailure, err, "Failed to read file '%s'", normalized)
	}
	lines := splitLines(strings.ToValidUTF8(string(data), "\uFFFD"))
	total := len(lines)

	if startLine > total {
		return "", apperrors.Newf(apperrors.CodeRangeValidation, "Start line %d exceeds file length (%d lines)", startLine, total)
	}

	end := endLine
	if end > total {
		end = total
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "File: %s\n", normalized)
	fmt.Fprintf(&builder, "Lines %d-%d of %d:\n\n", startLine, end, total)
	for i := startLine; i <= end; i++ {
		fmt.Fprintf(&builder, "%4d: %s\n", i, strings.TrimSuffix(lines[i-1], "\n"))
	}
	return builder.String(), nil
}

// splitLines splits text into lines where a line is terminated by a newline
// or by end of input. An empty input has zero lines and a trailing newline
// creates no phantom empty line; terminators are kept on each line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
