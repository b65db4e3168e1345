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

package chat

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// StreamEventType identifies the type of a streaming event.
type StreamEventType int

const (
	StreamEventContent StreamEventType = iota
	StreamEventError
	StreamEventDone
)

// StreamEvent is one chunk of a streamed reply.
type StreamEvent struct {
	Type    StreamEventType
	Content string
	Err     error
}

// StreamResponse sends the user message and streams the reply token by
// token through the returned channel. The channel is closed after a Done or
// Error event. Tools are not advertised on the streaming path.
func (s *Session) StreamResponse(ctx context.Context, prompt string) <-chan StreamEvent {
	events := make(chan StreamEvent)
	go s.streamResponse(ctx, prompt, events)
	return events
}

func (s *Session) streamResponse(ctx context.Context, prompt string, events chan<- StreamEvent) {
	defer close(events)

	if prompt != "" {
		s.AddMessage(openai.ChatMessageRoleUser, prompt)
	}

	req := s.buildRequest(false)
	req.Stream = true

	stream, err := s.newStream(ctx, req)
	if err != nil {
		events <- StreamEvent{Type: StreamEventError,
			Err: apperrors.Wrap(apperrors.CodeAPI, "chat completion stream failed", err)}
		return
	}
	defer stream.Close()

	var content strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			s.addAssistantMessage(content.String(), nil)
			events <- StreamEvent{Type: StreamEventDone}
			return
		}
		if err != nil {
			if ctx.Err() != nil {
				events <- StreamEvent{Type: StreamEventError,
					Err: apperrors.Wrap(apperrors.CodeInterrupted, "stream interrupted", err)}
				return
			}
			events <- StreamEvent{Type: StreamEventError,
				Err: apperrors.Wrap(apperrors.CodeAPI, "stream receive failed", err)}
			return
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		content.WriteString(delta)
		events <- StreamEvent{Type: StreamEventContent, Content: delta}
	}
}
