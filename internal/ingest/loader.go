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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/rs/zerolog"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
	"github.com/lukashino/defcon-llm-analysis/internal/inspect"
)

// Document is one loadable unit of text: a repository file, or a single
// page of a PDF guide (Page is 1-indexed for PDFs and zero for files).
type Document struct {
	Path    string
	Page    int
	Content string
}

// Loader reads repository trees and PDF guides into documents. Unreadable
// and binary files are skipped silently, in keeping with a best-effort
// demo ingestion; skips are reported at debug level only.
type Loader struct {
	Log    zerolog.Logger
	Limits inspect.Limits
}

const binarySniffLen = 8 * 1024

// LoadRepo walks a repository tree and loads every regular file whose name
// carries an extension, pruning the same directory names the inspection
// tools exclude.
func (l Loader) LoadRepo(root string) ([]Document, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.CodeIngest, err, "repository path %s is not readable", root)
	}
	if !info.IsDir() {
		return nil, apperrors.Newf(apperrors.CodeIngest, "repository path %s is not a directory", root)
	}

	var docs []Document
	err = filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			l.Log.Debug().Str("path", path).Err(walkErr).Msg("skipping unreadable entry")
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() {
			if path != root && l.Limits.Excluded(entry.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() || !strings.Contains(entry.Name(), ".") {
			return nil
		}

		data, readErr := os.ReadFile(path)
		if readErr != nil {
			l.Log.Debug().Str("path", path).Err(readErr).Msg("skipping unreadable file")
			return nil
		}
		if looksBinary(data) {
			l.Log.Debug().Str("path", path).Msg("skipping binary file")
			return nil
		}
		docs = append(docs, Document{
			Path:    path,
			Content: strings.ToValidUTF8(string(data), "�"),
		})
		return nil
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeIngest, "failed to walk repository", err)
	}
	return docs, nil
}

// LoadPDF extracts one document per page of a PDF guide. Pages whose text
// extraction fails are skipped.
func (l Loader) LoadPDF(path string) ([]Document, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.CodeIngest, err, "failed to open PDF %s", path)
	}
	defer file.Close()

	var docs []Document
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			l.Log.Debug().Str("path", path).Int("page", pageNum).Msg("skipping empty PDF page")
			continue
		}
		text, extractErr := page.GetPlainText(nil)
		if extractErr != nil {
			l.Log.Debug().Str("path", path).Int("page", pageNum).Err(extractErr).Msg("skipping unextractable PDF page")
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, Document{Path: path, Page: pageNum, Content: text})
	}
	return docs, nil
}

// looksBinary sniffs the first 8 KiB for a NUL byte.
func looksBinary(data []byte) bool {
	sniff := data
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) != -1
}
