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

// Package vecstore persists embedded code chunks and answers similarity
// queries over them. Persistence formats and ranking belong to the embedded
// vector database; this package only maps documents in and results out.
package vecstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// EmbeddingFunc turns one text into its embedding vector.
type EmbeddingFunc = chromem.EmbeddingFunc

// DefaultTopK is the retrieval depth used when none is configured.
const DefaultTopK = 100

// Store is a persistent vector database rooted at one directory.
type Store struct {
	db  *chromem.DB
	log zerolog.Logger
}

// Open opens (or creates) the persistent store at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.CodeVecstore, err, "failed to open vector store at %s", path)
	}
	return &Store{db: db, log: log.With().Str("component", "vecstore").Logger()}, nil
}

// Collection returns the named collection, creating it when absent.
func (s *Store) Collection(name string, embed EmbeddingFunc) (*Collection, error) {
	col, err := s.db.GetOrCreateCollection(name, nil, embed)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.CodeVecstore, err, "failed to open collection %s", name)
	}
	return &Collection{col: col, log: s.log.With().Str("collection", name).Logger()}, nil
}

// Collection is one named set of embedded chunks.
type Collection struct {
	col *chromem.Collection
	log zerolog.Logger
}

// Entry is one chunk to be embedded and stored.
type Entry struct {
	ID      string
	Content string
	Path    string
	Page    int
	Chunk   int
}

// Result is one retrieved chunk.
type Result struct {
	Content    string
	Path       string
	Similarity float32
}

// Add embeds and stores entries, upserting on ID.
func (c *Collection) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	docs := make([]chromem.Document, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, chromem.Document{
			ID:      entry.ID,
			Content: entry.Content,
			Metadata: map[string]string{
				"path":  entry.Path,
				"page":  strconv.Itoa(entry.Page),
				"chunk": strconv.Itoa(entry.Chunk),
			},
		})
	}
	if err := c.col.AddDocuments(ctx, docs, 1); err != nil {
		return apperrors.Wrap(apperrors.CodeVecstore, "failed to add documents", err)
	}
	c.log.Debug().Int("entries", len(entries)).Msg("stored chunks")
	return nil
}

// Count returns the number of stored chunks.
func (c *Collection) Count() int {
	return c.col.Count()
}

// Query embeds the text and returns the topK most similar chunks. The
// requested depth is clamped to the collection size; an empty collection
// yields no results rather than an error.
func (c *Collection) Query(ctx context.Context, text string, topK int) ([]Result, error) {
	count := c.col.Count()
	if count == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > count {
		topK = count
	}
	found, err := c.col.Query(ctx, text, topK, nil, nil)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeVecstore, "query failed", err)
	}
	results := make([]Result, 0, len(found))
	for _, item := range found {
		results = append(results, Result{
			Content:    item.Content,
			Path:       item.Metadata["path"],
			Similarity: item.Similarity,
		})
	}
	return results, nil
}

// FormatContext renders retrieved chunks into the context block the RAG
// prompt interpolates.
func FormatContext(results []Result) string {
	var builder strings.Builder
	for i, result := range results {
		if i > 0 {
			builder.WriteString("\n\n")
		}
		builder.WriteString("--- ")
		builder.WriteString(result.Path)
		builder.WriteString(" ---\n")
		builder.WriteString(result.Content)
	}
	return builder.String()
}
