package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/google/jsonschema-go/jsonschema"

	"self-improving-agent/internal/domain"
)

const FileCreatedMessage = "Python file created successfully"

var ErrInvalidArguments = errors.New("invalid tool arguments")

type FileWriter interface {
	WriteFile(name, content string) error
}

type ProcessRunner interface {
	Run(ctx context.Context, command, arguments string) (ProcessResult, error)
}

// ProcessResult is the captured output of a process that ran to completion,
// whatever its exit code.
type ProcessResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type tool struct {
	def      domain.ToolDefinition
	resolved *jsonschema.Resolved
}

type Dispatcher struct {
	files FileWriter
	procs ProcessRunner
	tools map[string]tool
	order []string
}

func NewDispatcher(files FileWriter, procs ProcessRunner) (*Dispatcher, error) {
	d := &Dispatcher{
		files: files,
		procs: procs,
		tools: make(map[string]tool),
	}

	for _, def := range []domain.ToolDefinition{createFileDefinition(), executeSubprocessDefinition()} {
		resolved, err := def.Parameters.Resolve(nil)
		if err != nil {
			return nil, fmt.Errorf("resolve schema for %s: %w", def.Name, err)
		}
		d.tools[def.Name] = tool{def: def, resolved: resolved}
		d.order = append(d.order, def.Name)
	}

	return d, nil
}

func (d *Dispatcher) Definitions() []domain.ToolDefinition {
	defs := make([]domain.ToolDefinition, 0, len(d.order))
	for _, name := range d.order {
		defs = append(defs, d.tools[name].def)
	}
	return defs
}

// Dispatch runs one tool call and returns the text fed back to the model.
// Unknown tools and sandbox rejections come back as text; malformed
// arguments and write failures come back as errors.
func (d *Dispatcher) Dispatch(ctx context.Context, call domain.ToolCall) (string, error) {
	t, ok := d.tools[call.Name]
	if !ok {
		return fmt.Sprintf("Error: function %s does not exist", call.Name), nil
	}

	args, err := decodeArguments(t, call.Arguments)
	if err != nil {
		return "", err
	}

	switch call.Name {
	case CreateFile:
		return d.createFile(args["file_name"].(string), args["content"].(string))
	case ExecuteSubprocess:
		return d.executeSubprocess(ctx, args["subprocess"].(string), args["arguments"].(string))
	}

	return fmt.Sprintf("Error: function %s does not exist", call.Name), nil
}

func (d *Dispatcher) createFile(name, content string) (string, error) {
	log.Printf("Creating file %s...", name)

	if err := d.files.WriteFile(name, content); err != nil {
		if errors.Is(err, domain.ErrNotAllowed) {
			return "Error: " + err.Error(), nil
		}
		return "", fmt.Errorf("create_file: %w", err)
	}

	return FileCreatedMessage, nil
}

func (d *Dispatcher) executeSubprocess(ctx context.Context, command, arguments string) (string, error) {
	log.Printf("Executing subprocess: %s %s", command, arguments)

	res, err := d.procs.Run(ctx, command, arguments)
	if err != nil {
		if errors.Is(err, domain.ErrNotAllowed) || errors.Is(err, domain.ErrProcessStart) {
			return "Error: " + err.Error(), nil
		}
		return "", fmt.Errorf("execute_subprocess: %w", err)
	}

	if res.ExitCode != 0 {
		log.Printf("subprocess %s exited with code %d", command, res.ExitCode)
	}

	if res.Stderr != "" {
		return res.Stderr, nil
	}
	return res.Stdout, nil
}

func decodeArguments(t tool, raw string) (map[string]any, error) {
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, t.def.Name, err)
	}
	if args == nil {
		return nil, fmt.Errorf("%w for %s: arguments must be an object", ErrInvalidArguments, t.def.Name)
	}

	if err := t.resolved.Validate(args); err != nil {
		return nil, fmt.Errorf("%w for %s: %v", ErrInvalidArguments, t.def.Name, err)
	}

	return args, nil
}
