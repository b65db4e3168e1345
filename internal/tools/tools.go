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

// Package tools holds the registry of functions the model may call and the
// bridge between OpenAI tool-call payloads and the inspection operations.
// A tool invocation always produces a string the model can reason over:
// every failure is rendered as a bracketed [Error] message, never surfaced
// as a fault to the session loop.
package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sashabaranov/go-openai"

	apperrors "github.com/lukashino/defcon-llm-analysis/internal/errors"
)

// ExecutorFunc is the function signature for tool implementations.
type ExecutorFunc func(args map[string]interface{}) (string, error)

// ToolDefinition describes a callable tool with validation and execution hooks.
type ToolDefinition struct {
	Name         string
	Description  string
	Parameters   map[string]interface{}
	ValidateFunc func(args map[string]interface{}) error
	ExecuteFunc  ExecutorFunc
}

// Registry holds all available tools with their implementations.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*ToolDefinition
}

// NewRegistry creates an empty tool registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]*ToolDefinition)}
}

// Register adds a tool to the registry. Registering a name twice is a
// programming error.
func (r *Registry) Register(tool *ToolDefinition) error {
	if tool == nil || tool.Name == "" {
		return apperrors.New(apperrors.CodeTool, "tool definition requires a name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[tool.Name]; exists {
		return apperrors.Newf(apperrors.CodeTool, "tool %q already registered", tool.Name)
	}
	r.tools[tool.Name] = tool
	return nil
}

// Get returns a tool definition by name.
func (r *Registry) Get(name string) (*ToolDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns all registered tool names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// OpenAITools returns the registry as OpenAI function-calling definitions.
func (r *Registry) OpenAITools() []openai.Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]openai.Tool, 0, len(names))
	for _, name := range names {
		tool := r.tools[name]
		defs = append(defs, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return defs
}

// ExecuteOpenAIToolCall decodes a tool call payload, validates its arguments
// and runs the executor. The returned string is always suitable as a
// tool-role message: failures come back rendered as "[Error]: ..." text
// alongside the coded error for logging.
func (r *Registry) ExecuteOpenAIToolCall(call openai.ToolCall) (string, error) {
	name := call.Function.Name
	if name == "" {
		err := apperrors.New(apperrors.CodeTool, "tool call is missing a function name")
		return RenderError(err), err
	}

	tool, ok := r.Get(name)
	if !ok {
		err := apperrors.Newf(apperrors.CodeTool, "unknown tool '%s'. Available tools: %s", name, strings.Join(r.Names(), ", "))
		return RenderError(err), err
	}

	args, err := parseToolArgs(call.Function.Arguments)
	if err != nil {
		coded := apperrors.Wrapf(apperrors.CodeTool, err, "invalid arguments for tool '%s'", name)
		return RenderError(coded), coded
	}

	if tool.ValidateFunc != nil {
		if err := tool.ValidateFunc(args); err != nil {
			coded := apperrors.Wrapf(apperrors.CodeTool, err, "invalid arguments for tool '%s'", name)
			return RenderError(coded), coded
		}
	}

	result, err := tool.ExecuteFunc(args)
	if err != nil {
		return RenderError(err), err
	}
	return result, nil
}

// RenderError formats a failure the way the agent expects to read it.
func RenderError(err error) string {
	return fmt.Sprintf("[Error]: %v", err)
}

func parseToolArgs(argsJSON string) (map[string]interface{}, error) {
	args := map[string]interface{}{}
	if strings.TrimSpace(argsJSON) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil {
		return nil, err
	}
	return args, nil
}
