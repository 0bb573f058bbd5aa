package domain

import "github.com/google/jsonschema-go/jsonschema"

// ToolDefinition is what the model sees of a tool.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
}
