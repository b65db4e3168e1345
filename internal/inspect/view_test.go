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
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

func TestViewFileReturnsContent(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "settings.py")
	writeFile(t, path, "DEBUG = True\n")

	out, err := ViewFile(path, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := fmt.Sprintf("File: %s\nSize: 13 bytes\n\nContent:\nDEBUG = True\n", path)
	if out != want {
		t.Fatalf("expected %q, got %q", want, out)
	}
}

func TestViewFileSizeBoundary(t *testing.T) {
	root := t.TempDir()
	atLimit := filepath.Join(root, "at_limit.txt")
	overLimit := filepath.Join(root, "over_limit.txt")
	writeFile(t, atLimit, strings.Repeat("a", 100_000))
	writeFile(t, overLimit, strings.Repeat("a", 100_001))

	if _, err := ViewFile(atLimit, Limits{}); err != nil {
		t.Fatalf("expected a file of exactly the cap to be served, got: %v", err)
	}

	_, err := ViewFile(overLimit, Limits{})
	if apperrors.CodeOf(err) != apperrors.CodeSizeLimit {
		t.Fatalf("expected size_limit, got %v", err)
	}
	want := "File is too large (100001 bytes > 100000 bytes). Use view_file_lines for large files."
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}

func TestViewFileReplacesInvalidUTF8(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "binaryish.txt")
	writeFile(t, path, "ok\xff\xfeok")

	out, err := ViewFile(path, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "�") {
		t.Fatalf("expected replacement runes in output, got %q", out)
	}
}

func TestViewFilePreconditionErrors(t *testing.T) {
	root := t.TempDir()

	_, err := ViewFile(filepath.Join(root, "missing.txt"), Limits{})
	if apperrors.CodeOf(err) != apperrors.CodeNotFound {
		t.Fatalf("expected not_found, got %v", err)
	}
	if !strings.Contains(err.Error(), "File does not exist: ") {
		t.Fatalf("unexpected message: %v", err)
	}

	_, err = ViewFile(root, Limits{})
	if apperrors.CodeOf(err) != apperrors.CodeWrongType {
		t.Fatalf("expected wrong_type, got %v", err)
	}
	if !strings.Contains(err.Error(), "Path exists but is not a file: ") {
		t.Fatalf("unexpected message: %v", err)
	}
}

func tenLineFile(t *testing.T, root string) string {
	t.Helper()
	path := filepath.Join(root, "ten.txt")
	var builder strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&builder, "line %d\n", i)
	}
	writeFile(t, path, builder.String())
	return path
}

func TestViewFileLinesSelectsRange(t *testing.T) {
	root := t.TempDir()
	path := tenLineFile(t, root)

	out, err := ViewFileLines(path, 3, 5, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantHeader := fmt.Sprintf("File: %s\nLines 3-5 of 10:\n\n", path)
	if !strings.HasPrefix(out, wantHeader) {
		t.Fatalf("expected header %q, got %q", wantHeader, out)
	}
	for _, want := range []string{"   3: line 3\n", "   4: line 4\n", "   5: line 5\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output %q", want, out)
		}
	}
	if strings.Contains(out, "line 2") || strings.Contains(out, "line 6") {
		t.Fatalf("expected only the requested range, got %q", out)
	}
}

func TestViewFileLinesClampsOvershootingEnd(t *testing.T) {
	root := t.TempDir()
	path := tenLineFile(t, root)

	out, err := ViewFileLines(path, 8, 50, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Lines 8-10 of 10:") {
		t.Fatalf("expected clamped range with total, got %q", out)
	}
	if !strings.Contains(out, "  10: line 10\n") {
		t.Fatalf("expected last line, got %q", out)
	}
}

func TestViewFileLinesValidationOrder(t *testing.T) {
	root := t.TempDir()
	path := tenLineFile(t, root)

	cases := []struct {
		name       string
		start, end int
		code       apperrors.Code
		message    string
	}{
		{"start below one", 0, 5, apperrors.CodeRangeValidation, "Start line must be >= 1, got 0"},
		{"end before start", 5, 3, apperrors.CodeRangeValidation, "End line (3) must be >= start line (5)"},
		{"span too large", 1, 150, apperrors.CodeRangeValidation, "Too many lines requested (150). Maximum 100 lines per request."},
		{"start beyond end of file", 11, 12, apperrors.CodeRangeValidation, "Start line 11 exceeds file length (10 lines)"},
	}
	for _, tc := range cases {
		_, err := ViewFileLines(path, tc.start, tc.end, Limits{})
		if apperrors.CodeOf(err) != tc.code {
			t.Errorf("%s: expected code %q, got %v", tc.name, tc.code, err)
			continue
		}
		if err.Error() != tc.message {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.message, err.Error())
		}
	}
}

func TestViewFileLinesTrailingNewlineIsNotALine(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "two.txt")
	writeFile(t, path, "first\nsecond\n")

	out, err := ViewFileLines(path, 1, 100, Limits{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Lines 1-2 of 2:") {
		t.Fatalf("expected 2 total lines, got %q", out)
	}

	empty := filepath.Join(root, "empty.txt")
	writeFile(t, empty, "")
	_, err = ViewFileLines(empty, 1, 1, Limits{})
	if apperrors.CodeOf(err) != apperrors.CodeRangeValidation {
		t.Fatalf("expected range_validation for empty file, got %v", err)
	}
	if !strings.Contains(err.Error(), "exceeds file length (0 lines)") {
		t.Fatalf("unexpected message: %v", err)
	}
}
