package tools

import (
	"github.com/google/jsonschema-go/jsonschema"

	"self-improving-agent/internal/domain"
)

const (
	CreateFile        = "create_file"
	ExecuteSubprocess = "execute_subprocess"
)

func createFileDefinition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        CreateFile,
		Description: "Creates a new file with the specified name and content. For example a Python file, a text file, etc.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file_name": {
					Type:        "string",
					Description: "Name of the file to create (should include extension)",
				},
				"content": {
					Type:        "string",
					Description: "The content to write into the file",
				},
			},
			Required: []string{"file_name", "content"},
		},
	}
}

func executeSubprocessDefinition() domain.ToolDefinition {
	return domain.ToolDefinition{
		Name:        ExecuteSubprocess,
		Description: "Executes a Subprocess and captures its output.",
		Parameters: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"arguments": {
					Type:        "string",
					Description: "The arguments to call, for example, file_name.py",
				},
				"subprocess": {
					Type:        "string",
					Description: "The Subprocess to call, example, python, pip, etc.",
				},
			},
			Required: []string{"arguments", "subprocess"},
		},
	}
}
