package loop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"self-improving-agent/internal/config"
	"self-improving-agent/internal/domain"
)

// BootstrapSize is the number of leading prompt messages every window keeps.
const BootstrapSize = 2

type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (domain.Message, error)
}

type CompletionRequest struct {
	Model       string
	Temperature float32
	MaxTokens   int
	Messages    []domain.Message
	Tools       []domain.ToolDefinition
}

type Dispatcher interface {
	Definitions() []domain.ToolDefinition
	Dispatch(ctx context.Context, call domain.ToolCall) (string, error)
}

type Notifier interface {
	Notify(ctx context.Context, text string) error
}

type Service struct {
	history   domain.History
	snapshots domain.Snapshotter
	client    Client
	tools     Dispatcher
	notifier  Notifier
	cfg       config.Config
}

func NewService(history domain.History, snapshots domain.Snapshotter, client Client, tools Dispatcher, cfg config.Config) *Service {
	return &Service{
		history:   history,
		snapshots: snapshots,
		client:    client,
		tools:     tools,
		cfg:       cfg,
	}
}

// WithNotifier mirrors console output to n. Delivery failures are logged
// and otherwise ignored.
func (s *Service) WithNotifier(n Notifier) *Service {
	s.notifier = n
	return s
}

// Bootstrap seeds the history with the system and instruction prompts, or
// with the previous snapshot when resuming.
func (s *Service) Bootstrap() error {
	if s.cfg.Resume {
		msgs, err := s.snapshots.Load()
		switch {
		case err == nil && len(msgs) > 0:
			s.history.Append(msgs...)
			log.Printf("resumed %d messages from snapshot", len(msgs))
			return nil
		case err != nil && !errors.Is(err, os.ErrNotExist):
			return fmt.Errorf("load snapshot: %w", err)
		}
	}

	s.history.Append(
		domain.Message{Role: domain.RoleSystem, Content: s.cfg.SystemPrompt},
		domain.Message{Role: domain.RoleUser, Content: s.cfg.InstructionPrompt},
	)
	return nil
}

// Run repeats Step until MaxIterations rounds completed (never, when it is
// zero) or ctx is done.
func (s *Service) Run(ctx context.Context) error {
	for i := 0; s.cfg.MaxIterations <= 0 || i < s.cfg.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Step(ctx); err != nil {
			return fmt.Errorf("iteration %d: %w", i+1, err)
		}
	}

	log.Printf("stopping after %d iterations", s.cfg.MaxIterations)
	return nil
}

// Step performs one round: ask the model, run the tools it asked for,
// append the proceed prompt and persist the full history.
func (s *Service) Step(ctx context.Context) error {
	reply, err := s.client.Complete(ctx, CompletionRequest{
		Model:       s.cfg.Model,
		Temperature: s.cfg.Temperature,
		MaxTokens:   s.cfg.MaxTokens,
		Messages:    s.history.Window(s.cfg.ContextMessageLimit, s.cfg.ContextTokenLimit),
		Tools:       s.tools.Definitions(),
	})
	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}

	reply.Role = domain.RoleAssistant
	s.history.Append(reply)

	for _, call := range reply.ToolCalls {
		s.report(ctx, fmt.Sprintf("Tool call %s: %s(%s)", call.ID, call.Name, call.Arguments))

		result, err := s.tools.Dispatch(ctx, call)
		if err != nil {
			return fmt.Errorf("tool %s: %w", call.Name, err)
		}

		s.history.Append(domain.Message{
			Role:       domain.RoleTool,
			Content:    result,
			ToolCallID: call.ID,
			Name:       call.Name,
		})
	}

	s.history.Append(domain.Message{
		Role:    domain.RoleUser,
		Content: s.cfg.ProceedPrompt,
	})

	if strings.TrimSpace(reply.Content) != "" {
		s.report(ctx, "Message content: "+reply.Content)
	}

	if err := s.snapshots.Save(s.history.Messages()); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}

func (s *Service) report(ctx context.Context, text string) {
	log.Print(text)

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Notify(ctx, text); err != nil {
		log.Printf("failed to notify: %v", err)
	}
}
