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
	"testing"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

func sessionWithStream(t *testing.T, stream *scriptedStream) *Session {
	t.Helper()
	sess := NewSessionWithClient(testConfig(), &MockChatClient{}, "system")
	sess.newStream = func(_ context.Context, _ openai.ChatCompletionRequest) (streamReceiver, error) {
		return stream, nil
	}
	return sess
}

func collectEvents(t *testing.T, events <-chan StreamEvent) []StreamEvent {
	t.Helper()
	var collected []StreamEvent
	for event := range events {
		collected = append(collected, event)
	}
	return collected
}

func TestStreamResponseContentAndDone(t *testing.T) {
	stream := &scriptedStream{
		chunks: []openai.ChatCompletionStreamResponse{
			contentChunk("Hel"),
			contentChunk("lo"),
		},
	}
	sess := sessionWithStream(t, stream)

	events := collectEvents(t, sess.StreamResponse(context.Background(), "hi"))
	if len(events) != 3 {
		t.Fatalf("expected 2 content events + done, got %+v", events)
	}
	if events[0].Content != "Hel" || events[1].Content != "lo" {
		t.Fatalf("unexpected content events: %+v", events[:2])
	}
	if events[2].Type != StreamEventDone {
		t.Fatalf("expected done event last, got %+v", events[2])
	}
	if !stream.closed {
		t.Fatal("expected the stream to be closed")
	}

	// The assembled reply lands in history.
	msgs := sess.MessagesSnapshot()
	last := msgs[len(msgs)-1]
	if last.Role != openai.ChatMessageRoleAssistant || last.Content != "Hello" {
		t.Fatalf("expected assembled assistant message, got %+v", last)
	}
}

func TestStreamResponseMidStreamError(t *testing.T) {
	stream := &scriptedStream{
		chunks:   []openai.ChatCompletionStreamResponse{contentChunk("partial")},
		finalErr: errors.New("connection reset"),
	}
	sess := sessionWithStream(t, stream)

	events := collectEvents(t, sess.StreamResponse(context.Background(), "hi"))
	last := events[len(events)-1]
	if last.Type != StreamEventError {
		t.Fatalf("expected error event last, got %+v", last)
	}
	if apperrors.CodeOf(last.Err) != apperrors.CodeAPI {
		t.Fatalf("expected api code, got %q", apperrors.CodeOf(last.Err))
	}
}

func TestStreamResponseCreateFailure(t *testing.T) {
	sess := NewSessionWithClient(testConfig(), &MockChatClient{}, "system")
	sess.newStream = func(_ context.Context, _ openai.ChatCompletionRequest) (streamReceiver, error) {
		return nil, errors.New("dial failed")
	}

	events := collectEvents(t, sess.StreamResponse(context.Background(), "hi"))
	if len(events) != 1 || events[0].Type != StreamEventError {
		t.Fatalf("expected a single error event, got %+v", events)
	}
}

func TestStreamResponseOmitsTools(t *testing.T) {
	var captured openai.ChatCompletionRequest
	sess := NewSessionWithClient(testConfig(), &MockChatClient{}, "system")
	sess.ToolRegistry = echoRegistry(t)
	sess.newStream = func(_ context.Context, req openai.ChatCompletionRequest) (streamReceiver, error) {
		captured = req
		return &scriptedStream{}, nil
	}

	collectEvents(t, sess.StreamResponse(context.Background(), "hi"))
	if len(captured.Tools) != 0 {
		t.Fatalf("streaming requests must not advertise tools, got %+v", captured.Tools)
	}
	if !captured.Stream {
		t.Fatal("expected Stream flag set")
	}
}
