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

package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

func initLocalRepo(t *testing.T, path string) string {
	t.Helper()
	repo, err := git.PlainInit(path, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	if err := os.WriteFile(filepath.Join(path, "app.py"), []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to open worktree: %v", err)
	}
	if _, err := wt.Add("app.py"); err != nil {
		t.Fatalf("failed to stage file: %v", err)
	}
	hash, err := wt.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "test", Email: "test@example.com"},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash.String()
}

func TestCloneOpensExistingRepository(t *testing.T) {
	path := t.TempDir()
	wantHead := initLocalRepo(t, path)

	cloned, head, err := Clone(context.Background(), "https://example.invalid/never-contacted.git", path, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cloned {
		t.Fatal("expected existing repository to be opened, not cloned")
	}
	if head != wantHead {
		t.Fatalf("expected head %s, got %s", wantHead, head)
	}
}

func TestCloneFromLocalSource(t *testing.T) {
	source := t.TempDir()
	wantHead := initLocalRepo(t, source)
	dest := filepath.Join(t.TempDir(), "clone")

	cloned, head, err := Clone(context.Background(), source, dest, io.Discard)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cloned {
		t.Fatal("expected a fresh clone")
	}
	if head != wantHead {
		t.Fatalf("expected head %s, got %s", wantHead, head)
	}
	if _, err := os.Stat(filepath.Join(dest, "app.py")); err != nil {
		t.Fatalf("expected cloned worktree file: %v", err)
	}
}
