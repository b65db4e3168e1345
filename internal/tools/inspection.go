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

package tools

import (
	"github.com/lukashino/defcon-llm-analysis/internal/inspect"
)

type viewFileArgs struct {
	Filepath string `json:"filepath" jsonschema:"description=Path to the file to view" validate:"required"`
}

type viewFileLinesArgs struct {
	Filepath  string `json:"filepath" jsonschema:"description=Path to the file to view" validate:"required"`
	StartLine int    `json:"start_line" jsonschema:"description=Starting line number (1-indexed)"`
	EndLine   int    `json:"end_line" jsonschema:"description=Ending line number (1-indexed, inclusive)"`
}

type listDirectoriesArgs struct {
	Directory string `json:"directory" jsonschema:"description=Directory path to list contents from" validate:"required"`
}

type listFilesArgs struct {
	Directory string `json:"directory" jsonschema:"description=Directory path to list file contents from" validate:"required"`
}

// RegisterInspectionTools registers the five read-only filesystem inspection
// tools the analysis agent works with. Limits bound every operation; zero
// fields fall back to the demo defaults.
func RegisterInspectionTools(reg *Registry, lim inspect.Limits) error {
	defs := []*ToolDefinition{
		{
			Name:         "view_file",
			Description:  "Views the contents of a specified file",
			Parameters:   mustSchemaParametersFor[viewFileArgs](),
			ValidateFunc: RequireStringArg("filepath", "argument 'filepath' is required"),
			ExecuteFunc: func(args map[string]interface{}) (string, error) {
				decoded, err := unmarshalAndValidate[viewFileArgs](args)
				if err != nil {
					return "", err
				}
				return inspect.ViewFile(decoded.Filepath, lim)
			},
		},
		{
			Name:        "view_file_lines",
			Description: "Views specific line ranges of a file. Use for large files or specific sections.",
			Parameters:  mustSchemaParametersFor[viewFileLinesArgs](),
			ValidateFunc: ChainValidation(
				RequireStringArg("filepath", "argument 'filepath' is required"),
				RequireIntArg("start_line", "argument 'start_line' must be an integer"),
				RequireIntArg("end_line", "argument 'end_line' must be an integer"),
			),
			ExecuteFunc: func(args map[string]interface{}) (string, error) {
				decoded, err := unmarshalAndValidate[viewFileLinesArgs](args)
				if err != nil {
					return "", err
				}
				return inspect.ViewFileLines(decoded.Filepath, decoded.StartLine, decoded.EndLine, lim)
			},
		},
		{
			Name:         "list_directories",
			Description:  "Lists subdirectories in the specified directory",
			Parameters:   mustSchemaParametersFor[listDirectoriesArgs](),
			ValidateFunc: RequireStringArg("directory", "argument 'directory' is required"),
			ExecuteFunc: func(args map[string]interface{}) (string, error) {
				decoded, err := unmarshalAndValidate[listDirectoriesArgs](args)
				if err != nil {
					return "", err
				}
				return inspect.ListDirectories(decoded.Directory, lim)
			},
		},
		{
			Name:         "list_files",
			Description:  "Lists all files in the specified directory (non-recursive)",
			Parameters:   mustSchemaParametersFor[listFilesArgs](),
			ValidateFunc: RequireStringArg("directory", "argument 'directory' is required"),
			ExecuteFunc: func(args map[string]interface{}) (string, error) {
				decoded, err := unmarshalAndValidate[listFilesArgs](args)
				if err != nil {
					return "", err
				}
				return inspect.ListFiles(decoded.Directory, lim)
			},
		},
		{
			Name:         "show_directory_structure",
			Description:  "Shows a tree-like structure of directories and files (limited depth for readability)",
			Parameters:   mustSchemaParametersFor[listDirectoriesArgs](),
			ValidateFunc: RequireStringArg("directory", "argument 'directory' is required"),
			ExecuteFunc: func(args map[string]interface{}) (string, error) {
				decoded, err := unmarshalAndValidate[listDirectoriesArgs](args)
				if err != nil {
					return "", err
				}
				return inspect.Tree(decoded.Directory, lim)
			},
		},
	}

	for _, def := range defs {
		if err := reg.Register(def); err != nil {
			return err
		}
	}
	return nil
}
