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
)

// normalizeConfigJSON rejects unknown or ill-typed fields before the real
// unmarshal, so a typo in the config file fails loudly instead of silently
// falling back to a default.
func normalizeConfigJSON(data []byte) ([]byte, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	if err := validateConfigMap(raw); err != nil {
		return nil, err
	}
	normalized, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}

func validateConfigMap(raw map[string]interface{}) error {
	allowed := map[string]func(interface{}) error{
		"api_key":              func(v interface{}) error { return validateString(v, "api_key") },
		"api_url":              func(v interface{}) error { return validateString(v, "api_url") },
		"model":                func(v interface{}) error { return validateString(v, "model") },
		"embedding_model":      func(v interface{}) error { return validateString(v, "embedding_model") },
		"agent_temperature":    func(v interface{}) error { return validateNumber(v, "agent_temperature") },
		"rag_temperature":      func(v interface{}) error { return validateNumber(v, "rag_temperature") },
		"max_tokens":           func(v interface{}) error { return validateNumber(v, "max_tokens") },
		"max_tool_rounds":      func(v interface{}) error { return validateNumber(v, "max_tool_rounds") },
		"history_max_messages": func(v interface{}) error { return validateNumber(v, "history_max_messages") },
		"history_file":         func(v interface{}) error { return validateString(v, "history_file") },
		"repo_url":             func(v interface{}) error { return validateString(v, "repo_url") },
		"repo_path":            func(v interface{}) error { return validateString(v, "repo_path") },
		"db_path":              func(v interface{}) error { return validateString(v, "db_path") },
		"collection":           func(v interface{}) error { return validateString(v, "collection") },
		"top_k":                func(v interface{}) error { return validateNumber(v, "top_k") },
		"chunk_size":           func(v interface{}) error { return validateNumber(v, "chunk_size") },
		"chunk_overlap":        func(v interface{}) error { return validateNumber(v, "chunk_overlap") },
		"report_file":          func(v interface{}) error { return validateString(v, "report_file") },
		"tool_limits":          validateToolLimits,
	}

	for key, value := range raw {
		validator, ok := allowed[key]
		if !ok {
			return fmt.Errorf("unknown configuration field %q", key)
		}
		if err := validator(value); err != nil {
			return err
		}
	}

	return nil
}

func validateToolLimits(value interface{}) error {
	section, ok := value.(map[string]interface{})
	if !ok {
		return fmt.Errorf("tool_limits must be an object")
	}
	allowed := map[string]func(interface{}) error{
		"exclude_names":         func(v interface{}) error { return validateStringArray(v, "tool_limits.exclude_names") },
		"max_depth":             func(v interface{}) error { return validateNumber(v, "tool_limits.max_depth") },
		"max_files":             func(v interface{}) error { return validateNumber(v, "tool_limits.max_files") },
		"max_file_bytes":        func(v interface{}) error { return validateNumber(v, "tool_limits.max_file_bytes") },
		"max_lines_per_request": func(v interface{}) error { return validateNumber(v, "tool_limits.max_lines_per_request") },
	}
	for key, val := range section {
		validator, ok := allowed[key]
		if !ok {
			return fmt.Errorf("unknown configuration field %q", "tool_limits."+key)
		}
		if err := validator(val); err != nil {
			return err
		}
	}
	return nil
}

func validateString(value interface{}, field string) error {
	if _, ok := value.(string); !ok {
		return fmt.Errorf("%s must be a string", field)
	}
	return nil
}

func validateNumber(value interface{}, field string) error {
	if _, ok := value.(float64); !ok {
		return fmt.Errorf("%s must be a number", field)
	}
	return nil
}

func validateStringArray(value interface{}, field string) error {
	items, ok := value.([]interface{})
	if !ok {
		return fmt.Errorf("%s must be an array of strings", field)
	}
	for _, item := range items {
		if _, ok := item.(string); !ok {
			return fmt.Errorf("%s must be an array of strings", field)
		}
	}
	return nil
}
