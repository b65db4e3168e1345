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
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/u-root/u-root/pkg/core"
	coreshasum "github.com/u-root/u-root/pkg/core/shasum"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// Digest returns the SHA-256 content digest of a file. Chunk IDs are
// derived from it so that re-indexing an unchanged repository upserts in
// place instead of duplicating entries.
func Digest(ctx context.Context, path string) (string, error) {
	out, err := runCoreCommand(ctx, coreshasum.New(), []string{"-a", "256", path})
	if err != nil {
		return "", apperrors.Wrapf(apperrors.CodeIngest, err, "failed to digest %s", path)
	}
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return "", apperrors.Newf(apperrors.CodeIngest, "empty digest output for %s", path)
	}
	return fields[0], nil
}

// ChunkID derives a stable vector-store ID for the nth chunk of a digested
// document.
func ChunkID(digest string, chunk int) string {
	if len(digest) > 12 {
		digest = digest[:12]
	}
	return fmt.Sprintf("%s-%d", digest, chunk)
}

// runCoreCommand executes a u-root core command and captures its output.
func runCoreCommand(ctx context.Context, cmd core.Command, args []string) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.SetIO(strings.NewReader(""), &stdout, &stderr)

	workdir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine working directory: %v", err)
	}
	cmd.SetWorkingDir(workdir)

	if err := cmd.RunContext(ctx, args...); err != nil {
		errMsg := strings.TrimSpace(stderr.String())
		if errMsg != "" {
			return "", fmt.Errorf("%v: %s", err, errMsg)
		}
		return "", err
	}

	return stdout.String(), nil
}
