package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// prompts is the layout of PROMPTS_FILE. Empty fields keep the defaults.
type prompts struct {
	System      string `yaml:"system"`
	Instruction string `yaml:"instruction"`
	Proceed     string `yaml:"proceed"`
}

func loadPrompts(path string) (prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return prompts{}, fmt.Errorf("read prompts file: %w", err)
	}

	var p prompts
	if err := yaml.Unmarshal(data, &p); err != nil {
		return prompts{}, fmt.Errorf("parse prompts file %s: %w", path, err)
	}
	return p, nil
}

func (p prompts) apply(cfg *Config) {
	if p.System != "" {
		cfg.SystemPrompt = p.System
	}
	if p.Instruction != "" {
		cfg.InstructionPrompt = p.Instruction
	}
	if p.Proceed != "" {
		cfg.ProceedPrompt = p.Proceed
	}
}
