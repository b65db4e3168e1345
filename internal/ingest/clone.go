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

// Package ingest turns a source repository (or a PDF methodology guide)
// into the documents and chunks the vector store indexes: cloning, loading,
// splitting and content digesting.
package ingest

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// Clone ensures a git repository is present at path. When path already
// holds a repository it is opened instead of cloned. Returns whether a
// network clone happened and the HEAD commit hash.
func Clone(ctx context.Context, url, path string, progress io.Writer) (bool, string, error) {
	if isGitRepo(path) {
		repo, err := git.PlainOpen(path)
		if err != nil {
			return false, "", apperrors.Wrapf(apperrors.CodeClone, err, "failed to open repository at %s", path)
		}
		head, err := headHash(repo)
		if err != nil {
			return false, "", err
		}
		return false, head, nil
	}

	repo, err := git.PlainCloneContext(ctx, path, false, &git.CloneOptions{
		URL:      url,
		Progress: progress,
	})
	if err != nil {
		return false, "", apperrors.Wrapf(apperrors.CodeClone, err, "failed to clone %s", url)
	}
	head, err := headHash(repo)
	if err != nil {
		return true, "", err
	}
	return true, head, nil
}

func isGitRepo(path string) bool {
	info, err := os.Stat(filepath.Join(path, ".git"))
	return err == nil && info.IsDir()
}

func headHash(repo *git.Repository) (string, error) {
	ref, err := repo.Head()
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeClone, "failed to resolve repository HEAD", err)
	}
	return ref.Hash().String(), nil
}
