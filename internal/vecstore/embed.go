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

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// EmbeddingClient is the part of the chat API used for embeddings.
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, req openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIEmbedder embeds one text per call through the embeddings endpoint.
func OpenAIEmbedder(client EmbeddingClient, model string) EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		resp, err := client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: []string{text},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeAPI, "embedding request failed", err)
		}
		if len(resp.Data) == 0 {
			return nil, apperrors.New(apperrors.CodeAPI, "embedding response contained no vectors")
		}
		return resp.Data[0].Embedding, nil
	}
}
