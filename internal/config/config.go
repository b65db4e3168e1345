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

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lukashino/defcon-llm-analysis/internal/inspect"
)

// Config represents the application configuration shared by all three
// binaries. Unknown fields in the config file are rejected, missing fields
// fall back to defaults.
type Config struct {
	APIKey             string         `json:"api_key"`
	APIURL             string         `json:"api_url,omitempty"`
	Model              string         `json:"model,omitempty"`
	EmbeddingModel     string         `json:"embedding_model,omitempty"`
	AgentTemperature   *float32       `json:"agent_temperature,omitempty"`
	RAGTemperature     *float32       `json:"rag_temperature,omitempty"`
	MaxTokens          *int           `json:"max_tokens,omitempty"`
	MaxToolRounds      int            `json:"max_tool_rounds,omitempty"`
	HistoryMaxMessages int            `json:"history_max_messages,omitempty"`
	HistoryFile        string         `json:"history_file,omitempty"`
	RepoURL            string         `json:"repo_url,omitempty"`
	RepoPath           string         `json:"repo_path,omitempty"`
	DBPath             string         `json:"db_path,omitempty"`
	Collection         string         `json:"collection,omitempty"`
	TopK               int            `json:"top_k,omitempty"`
	ChunkSize          int            `json:"chunk_size,omitempty"`
	ChunkOverlap       int            `json:"chunk_overlap,omitempty"`
	ReportFile         string         `json:"report_file,omitempty"`
	ToolLimits         inspect.Limits `json:"tool_limits,omitempty"`
}

// DefaultConfig returns a config with the demo's default values.
func DefaultConfig() *Config {
	agentTemp := float32(0.2)
	ragTemp := float32(0.6)
	return &Config{
		APIURL:             "https://api.openai.com/v1",
		Model:              "gpt-4o-mini",
		EmbeddingModel:     "text-embedding-3-small",
		AgentTemperature:   &agentTemp,
		RAGTemperature:     &ragTemp,
		MaxToolRounds:      25,
		HistoryMaxMessages: 100,
		HistoryFile:        ".scachat_history",
		RepoURL:            "https://github.com/redpointsec/vtm.git",
		RepoPath:           "./repo",
		DBPath:             "vector_databases",
		Collection:         "vtm",
		TopK:               100,
		ChunkSize:          8000,
		ChunkOverlap:       100,
		ReportFile:         "red_team_report.md",
		ToolLimits:         inspect.DefaultLimits(),
	}
}

// configSearchPaths lists the locations tried when no explicit config file
// is given, in order.
func configSearchPaths() []string {
	paths := []string{"defcon-llm-analysis.json"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "defcon-llm-analysis", "config.json"))
	}
	return paths
}

// LoadConfig loads configuration from a JSON file, applies env overrides,
// and validates required fields. An empty path means: use the first config
// file found in the default search locations, if any.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path == "" {
		for _, candidate := range configSearchPaths() {
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
				break
			}
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, err
			}
			normalized, err := normalizeConfigJSON(data)
			if err != nil {
				return nil, err
			}
			if err := json.Unmarshal(normalized, config); err != nil {
				return nil, err
			}
		}
	}

	// Env overrides (apply regardless of whether a config file exists).
	if val := os.Getenv("OPENAI_API_KEY"); val != "" {
		config.APIKey = val
	}
	if val := os.Getenv("OPENAI_API_URL"); val != "" {
		config.APIURL = val
	}
	if val := os.Getenv("OPENAI_MODEL"); val != "" {
		config.Model = val
	}
	if val := os.Getenv("EMBEDDING_MODEL"); val != "" {
		config.EmbeddingModel = val
	}

	if config.Model == "" {
		config.Model = "gpt-4o-mini"
	}
	if config.APIURL == "" {
		config.APIURL = "https://api.openai.com/v1"
	}

	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required (set api_key in the config file or OPENAI_API_KEY)")
	}

	return config, nil
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

// Validate checks the configuration for common issues and returns warnings.
func (c *Config) Validate() []ValidationWarning {
	var warnings []ValidationWarning

	checkTemp := func(field string, value *float32) {
		if value == nil {
			return
		}
		if *value < 0 || *value > 2 {
			warnings = append(warnings, ValidationWarning{
				Field:   field,
				Message: fmt.Sprintf("temperature %.2f is outside recommended range [0, 2]", *value),
			})
		}
	}
	checkTemp("agent_temperature", c.AgentTemperature)
	checkTemp("rag_temperature", c.RAGTemperature)

	if c.MaxTokens != nil {
		tokens := *c.MaxTokens
		if tokens <= 0 {
			warnings = append(warnings, ValidationWarning{
				Field:   "max_tokens",
				Message: fmt.Sprintf("max_tokens %d must be positive", tokens),
			})
		}
		if tokens > 128000 {
			warnings = append(warnings, ValidationWarning{
				Field:   "max_tokens",
				Message: fmt.Sprintf("max_tokens %d exceeds typical model limits", tokens),
			})
		}
	}

	if c.ChunkOverlap >= c.ChunkSize && c.ChunkSize > 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "chunk_overlap",
			Message: fmt.Sprintf("chunk_overlap %d is not smaller than chunk_size %d", c.ChunkOverlap, c.ChunkSize),
		})
	}

	if c.TopK < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "top_k",
			Message: fmt.Sprintf("top_k %d must not be negative", c.TopK),
		})
	}

	if c.MaxToolRounds < 0 {
		warnings = append(warnings, ValidationWarning{
			Field:   "max_tool_rounds",
			Message: fmt.Sprintf("max_tool_rounds %d must not be negative", c.MaxToolRounds),
		})
	}

	if c.ToolLimits.MaxFileBytes > 10_000_000 {
		warnings = append(warnings, ValidationWarning{
			Field:   "tool_limits.max_file_bytes",
			Message: fmt.Sprintf("max_file_bytes %d is unreasonably large for model context", c.ToolLimits.MaxFileBytes),
		})
	}

	return warnings
}
