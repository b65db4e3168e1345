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

package vecstore

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// stubEmbedder is a deterministic local embedding function: character
// frequencies bucketed into a small normalized vector. Similar texts get
// similar vectors, which is all the ranking tests need.
func stubEmbedder(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for _, r := range text {
		vec[int(r)%8]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		norm = 1
	}
	scale := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= scale
	}
	return vec, nil
}

func openTestCollection(t *testing.T) *Collection {
	t.Helper()
	store, err := Open(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	col, err := store.Collection("vtm", stubEmbedder)
	if err != nil {
		t.Fatalf("failed to open collection: %v", err)
	}
	return col
}

func TestAddAndQueryRoundTrip(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)

	entries := []Entry{
		{ID: "a-0", Content: "django views handle requests", Path: "repo/app/views.py", Chunk: 0},
		{ID: "b-0", Content: "sql select statement builder", Path: "repo/app/queries.py", Chunk: 0},
		{ID: "c-0", Content: "password hashing utilities", Path: "repo/app/auth.py", Chunk: 0},
	}
	if err := col.Add(ctx, entries); err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if col.Count() != 3 {
		t.Fatalf("expected 3 chunks, got %d", col.Count())
	}

	results, err := col.Query(ctx, "django views handle requests", 2)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Path != "repo/app/views.py" {
		t.Fatalf("expected closest match first, got %+v", results[0])
	}
}

func TestQueryClampsTopKToCollectionSize(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)
	if err := col.Add(ctx, []Entry{{ID: "only-0", Content: "single chunk", Path: "one.py"}}); err != nil {
		t.Fatalf("failed to add: %v", err)
	}

	results, err := col.Query(ctx, "anything", 100)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected clamped single result, got %d", len(results))
	}
}

func TestQueryEmptyCollection(t *testing.T) {
	col := openTestCollection(t)
	results, err := col.Query(context.Background(), "anything", 10)
	if err != nil {
		t.Fatalf("expected no error for empty collection, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestAddUpsertsOnSameID(t *testing.T) {
	ctx := context.Background()
	col := openTestCollection(t)
	if err := col.Add(ctx, []Entry{{ID: "x-0", Content: "first version", Path: "x.py"}}); err != nil {
		t.Fatalf("failed to add: %v", err)
	}
	if err := col.Add(ctx, []Entry{{ID: "x-0", Content: "second version", Path: "x.py"}}); err != nil {
		t.Fatalf("failed to re-add: %v", err)
	}
	if col.Count() != 1 {
		t.Fatalf("expected upsert to keep one chunk, got %d", col.Count())
	}
}

func TestFormatContext(t *testing.T) {
	out := FormatContext([]Result{
		{Content: "chunk one", Path: "a.py"},
		{Content: "chunk two", Path: "b.py"},
	})
	if !strings.Contains(out, "--- a.py ---\nchunk one") {
		t.Fatalf("expected labeled chunk, got %q", out)
	}
	if !strings.Contains(out, "--- b.py ---\nchunk two") {
		t.Fatalf("expected second labeled chunk, got %q", out)
	}
	if FormatContext(nil) != "" {
		t.Fatal("expected empty context for no results")
	}
}
