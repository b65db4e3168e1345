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
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/lukashino/defcon-llm-analysis/internal/config"
	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
	"github.com/lukashino/defcon-llm-analysis/internal/tools"
)

const defaultMaxToolRounds = 25

// Session holds a conversation with the model: client, sampling parameters,
// message history and an optional tool registry.
//
// Message operations are protected by an internal mutex; the tool loop
// executes calls sequentially, matching the single-threaded resource model
// of the inspection core.
type Session struct {
	Client       ChatClient
	Config       *config.Config
	Temperature  *float32
	ToolRegistry *tools.Registry
	Log          zerolog.Logger

	mu        sync.Mutex
	messages  []openai.ChatCompletionMessage
	newStream func(ctx context.Context, req openai.ChatCompletionRequest) (streamReceiver, error)
}

// NewSession creates a session backed by a real OpenAI-compatible client.
func NewSession(cfg *config.Config, systemPrompt string) *Session {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.APIURL != "" {
		clientConfig.BaseURL = cfg.APIURL
		clientConfig.HTTPClient = &http.Client{}
	}
	return NewSessionWithClient(cfg, openai.NewClientWithConfig(clientConfig), systemPrompt)
}

// NewSessionWithClient creates a session with a provided client (for testing).
func NewSessionWithClient(cfg *config.Config, client ChatClient, systemPrompt string) *Session {
	sess := &Session{
		Client: client,
		Config: cfg,
		Log:    zerolog.Nop(),
	}
	if systemPrompt != "" {
		sess.messages = []openai.ChatCompletionMessage{{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		}}
	}
	sess.newStream = func(ctx context.Context, req openai.ChatCompletionRequest) (streamReceiver, error) {
		return client.CreateChatCompletionStream(ctx, req)
	}
	return sess
}

// SetSystemPrompt replaces the leading system message. Retrieval-augmented
// chat rebuilds it per question since the retrieved context changes.
func (s *Session) SetSystemPrompt(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: content,
	}
	if len(s.messages) > 0 && s.messages[0].Role == openai.ChatMessageRoleSystem {
		s.messages[0] = msg
		return
	}
	s.messages = append([]openai.ChatCompletionMessage{msg}, s.messages...)
}

// AddMessage appends a plain message to the conversation history.
func (s *Session) AddMessage(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:    role,
		Content: content,
	})
	s.trimLocked()
}

func (s *Session) addAssistantMessage(content string, toolCalls []openai.ToolCall) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:      openai.ChatMessageRoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
	s.trimLocked()
}

func (s *Session) addToolResultMessage(call openai.ToolCall, result string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	name := call.Function.Name
	if name == "" {
		name = "unknown_tool"
	}
	s.messages = append(s.messages, openai.ChatCompletionMessage{
		Role:       openai.ChatMessageRoleTool,
		Content:    result,
		Name:       name,
		ToolCallID: call.ID,
	})
}

// trimLocked keeps the leading system message and the most recent N
// messages. Caller holds s.mu.
func (s *Session) trimLocked() {
	limit := s.Config.HistoryMaxMessages
	if limit <= 0 {
		return
	}
	start := 0
	if len(s.messages) > 0 && s.messages[0].Role == openai.ChatMessageRoleSystem {
		start = 1
	}
	rest := s.messages[start:]
	if len(rest) <= limit {
		return
	}
	kept := rest[len(rest)-limit:]
	s.messages = append(s.messages[:start:start], kept...)
}

// MessagesSnapshot returns a copy of the current messages.
func (s *Session) MessagesSnapshot() []openai.ChatCompletionMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := make([]openai.ChatCompletionMessage, len(s.messages))
	copy(msgs, s.messages)
	return msgs
}

// History returns the conversation history excluding the system message.
func (s *Session) History() []openai.ChatCompletionMessage {
	msgs := s.MessagesSnapshot()
	if len(msgs) > 0 && msgs[0].Role == openai.ChatMessageRoleSystem {
		msgs = msgs[1:]
	}
	return msgs
}

// ClearHistory drops everything except the leading system message.
func (s *Session) ClearHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 && s.messages[0].Role == openai.ChatMessageRoleSystem {
		s.messages = s.messages[:1]
		return
	}
	s.messages = nil
}

func (s *Session) buildRequest(withTools bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:    s.Config.Model,
		Messages: s.MessagesSnapshot(),
	}
	if s.Temperature != nil {
		req.Temperature = *s.Temperature
	}
	if s.Config.MaxTokens != nil {
		req.MaxTokens = *s.Config.MaxTokens
	}
	if withTools && s.ToolRegistry != nil && s.ToolRegistry.Len() > 0 {
		req.Tools = s.ToolRegistry.OpenAITools()
	}
	return req
}

// GetResponseWithContext sends the user message and resolves tool calls
// until the model produces a final text reply. The loop is bounded: once
// max_tool_rounds rounds of tool execution have run and the model still
// asks for tools, a tool_rounds error is returned.
func (s *Session) GetResponseWithContext(ctx context.Context, prompt string) (string, error) {
	s.AddMessage(openai.ChatMessageRoleUser, prompt)

	maxRounds := s.Config.MaxToolRounds
	if maxRounds <= 0 {
		maxRounds = defaultMaxToolRounds
	}

	rounds := 0
	for {
		resp, err := s.Client.CreateChatCompletion(ctx, s.buildRequest(true))
		if err != nil {
			if ctx.Err() != nil {
				return "", apperrors.Wrap(apperrors.CodeInterrupted, "chat completion interrupted", err)
			}
			return "", apperrors.Wrap(apperrors.CodeAPI, "chat completion request failed", err)
		}
		if len(resp.Choices) == 0 {
			return "", apperrors.New(apperrors.CodeAPI, "chat completion returned no choices")
		}

		reply := resp.Choices[0].Message
		s.addAssistantMessage(reply.Content, reply.ToolCalls)

		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		rounds++
		if rounds > maxRounds {
			return "", apperrors.Newf(apperrors.CodeToolRounds,
				"tool call limit reached after %d rounds", maxRounds)
		}
		if s.ToolRegistry == nil {
			return "", apperrors.New(apperrors.CodeTool, "model requested tools but no registry is configured")
		}

		for _, call := range reply.ToolCalls {
			result, execErr := s.ToolRegistry.ExecuteOpenAIToolCall(call)
			logEvent := s.Log.Info().
				Int("round", rounds).
				Str("tool", call.Function.Name).
				Str("args", summarizeArgs(call.Function.Arguments)).
				Int("result_bytes", len(result))
			if execErr != nil {
				logEvent = logEvent.AnErr("tool_error", execErr)
			}
			logEvent.Msg("tool call")
			s.addToolResultMessage(call, result)
		}
	}
}

// GetResponse is GetResponseWithContext with a background context.
func (s *Session) GetResponse(prompt string) (string, error) {
	return s.GetResponseWithContext(context.Background(), prompt)
}

const argsSummaryLimit = 120

// summarizeArgs compacts tool call arguments to a single short line for logs.
func summarizeArgs(args string) string {
	compact := strings.Join(strings.Fields(args), " ")
	if len(compact) > argsSummaryLimit {
		return compact[:argsSummaryLimit] + "..."
	}
	return compact
}
