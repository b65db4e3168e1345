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

import "strings"

// Split chunking defaults.
const (
	DefaultChunkSize    = 8000
	DefaultChunkOverlap = 100
)

// splitSeparators are tried in order: paragraph breaks, line breaks, word
// breaks, finally raw character slicing.
var splitSeparators = []string{"\n\n", "\n", " ", ""}

// Split breaks text into chunks of at most chunkSize characters, carrying
// up to overlap characters between consecutive chunks. Pieces are cut at
// the coarsest separator that keeps them under the size, recursing to finer
// separators for oversized pieces. Whitespace-only chunks are dropped.
func Split(text string, chunkSize, overlap int) []string {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
		if overlap >= chunkSize {
			overlap = 0
		}
	}
	return splitRecursive(text, splitSeparators, chunkSize, overlap)
}

func splitRecursive(text string, separators []string, chunkSize, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if len(text) <= chunkSize {
		return []string{text}
	}

	sep, rest := pickSeparator(text, separators)
	if sep == "" {
		return sliceWithOverlap(text, chunkSize, overlap)
	}

	parts := strings.Split(text, sep)
	var pieces []string
	for _, part := range parts {
		if len(part) <= chunkSize {
			pieces = append(pieces, part)
			continue
		}
		pieces = append(pieces, splitRecursive(part, rest, chunkSize, overlap)...)
	}
	return mergePieces(pieces, sep, chunkSize, overlap)
}

func pickSeparator(text string, separators []string) (string, []string) {
	for i, sep := range separators {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, separators[i+1:]
		}
	}
	return "", nil
}

// mergePieces greedily packs adjacent pieces into chunks of at most
// chunkSize characters, keeping a tail of at most overlap characters as the
// start of the next chunk.
func mergePieces(pieces []string, sep string, chunkSize, overlap int) []string {
	var chunks []string
	var current []string
	currentLen := 0

	joinedLen := func(extra int) int {
		n := currentLen + extra
		if len(current) > 0 {
			n += len(sep) * len(current)
		}
		return n
	}

	for _, piece := range pieces {
		if len(current) > 0 && joinedLen(len(piece)) > chunkSize {
			appendChunk(&chunks, strings.Join(current, sep))
			for currentLen > overlap && len(current) > 0 {
				currentLen -= len(current[0])
				current = current[1:]
			}
		}
		current = append(current, piece)
		currentLen += len(piece)
	}
	if len(current) > 0 {
		appendChunk(&chunks, strings.Join(current, sep))
	}
	return chunks
}

func appendChunk(chunks *[]string, chunk string) {
	if strings.TrimSpace(chunk) == "" {
		return
	}
	*chunks = append(*chunks, chunk)
}

// sliceWithOverlap hard-slices text when no separator applies.
func sliceWithOverlap(text string, chunkSize, overlap int) []string {
	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize
	}
	var chunks []string
	for start := 0; start < len(text); start += step {
		end := start + chunkSize
		if end > len(text) {
			end = len(text)
		}
		appendChunk(&chunks, text[start:end])
		if end == len(text) {
			break
		}
	}
	return chunks
}
