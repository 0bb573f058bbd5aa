package openai

import (
	"context"
	"errors"
	"math"

	openaiapi "github.com/sashabaranov/go-openai"

	"self-improving-agent/internal/domain"
	"self-improving-agent/internal/usecase/loop"
)

// blankContent stands in for empty text on non-assistant messages:
// go-openai omits an empty content field and the endpoint requires it.
const blankContent = " "

type Client struct {
	api *openaiapi.Client
}

// NewClient talks to the OpenAI API, or to any compatible endpoint when
// baseURL is set.
func NewClient(token, baseURL string) *Client {
	cfg := openaiapi.DefaultConfig(token)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &Client{
		api: openaiapi.NewClientWithConfig(cfg),
	}
}

func (c *Client) Complete(ctx context.Context, req loop.CompletionRequest) (domain.Message, error) {
	apiReq := openaiapi.ChatCompletionRequest{
		Model:       req.Model,
		Temperature: temperature(req.Temperature),
		MaxTokens:   req.MaxTokens,
		Stream:      false,
		Messages:    toAPIMessages(req.Messages),
		Tools:       toAPITools(req.Tools),
	}

	resp, err := c.api.CreateChatCompletion(ctx, apiReq)
	if err != nil {
		return domain.Message{}, err
	}

	if len(resp.Choices) == 0 {
		return domain.Message{}, errors.New("openai returned empty response")
	}

	return fromAPIMessage(resp.Choices[0].Message), nil
}

func toAPIMessages(msgs []domain.Message) []openaiapi.ChatCompletionMessage {
	res := make([]openaiapi.ChatCompletionMessage, 0, len(msgs))
	for _, m := range msgs {
		msg := openaiapi.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
			Name:       m.Name,
		}
		if msg.Content == "" && m.Role != domain.RoleAssistant {
			msg.Content = blankContent
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openaiapi.ToolCall{
				ID:   tc.ID,
				Type: openaiapi.ToolTypeFunction,
				Function: openaiapi.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		res = append(res, msg)
	}
	return res
}

// temperature keeps an explicit zero on the wire; go-openai drops 0 as unset.
func temperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

func toAPITools(defs []domain.ToolDefinition) []openaiapi.Tool {
	if len(defs) == 0 {
		return nil
	}

	res := make([]openaiapi.Tool, 0, len(defs))
	for _, d := range defs {
		res = append(res, openaiapi.Tool{
			Type: openaiapi.ToolTypeFunction,
			Function: &openaiapi.FunctionDefinition{
				Name:        d.Name,
				Description: d.Description,
				Parameters:  d.Parameters,
			},
		})
	}
	return res
}

func fromAPIMessage(m openaiapi.ChatCompletionMessage) domain.Message {
	msg := domain.Message{
		Role:    domain.RoleAssistant,
		Content: m.Content,
	}
	for _, tc := range m.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg
}
