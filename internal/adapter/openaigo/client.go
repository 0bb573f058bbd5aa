package openaigo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/shared"

	"self-improving-agent/internal/domain"
	"self-improving-agent/internal/usecase/loop"
)

// Client implements loop.Client on top of the official openai-go SDK.
// Retries are disabled.
type Client struct {
	api openai.Client
}

func NewClient(token, baseURL string) *Client {
	opts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}

	return &Client{
		api: openai.NewClient(opts...),
	}
}

func (c *Client) Complete(ctx context.Context, req loop.CompletionRequest) (domain.Message, error) {
	tools, err := toTools(req.Tools)
	if err != nil {
		return domain.Message{}, err
	}

	params := openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    toMessages(req.Messages),
		Tools:       tools,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return domain.Message{}, err
	}

	if len(resp.Choices) == 0 {
		return domain.Message{}, errors.New("openai returned empty response")
	}

	choice := resp.Choices[0].Message
	msg := domain.Message{
		Role:    domain.RoleAssistant,
		Content: choice.Content,
	}
	for _, tc := range choice.ToolCalls {
		msg.ToolCalls = append(msg.ToolCalls, domain.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return msg, nil
}

func toMessages(msgs []domain.Message) []openai.ChatCompletionMessageParamUnion {
	res := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch m.Role {
		case domain.RoleSystem:
			res = append(res, openai.SystemMessage(m.Content))
		case domain.RoleTool:
			res = append(res, openai.ToolMessage(m.Content, m.ToolCallID))
		case domain.RoleAssistant:
			res = append(res, assistantMessage(m))
		default:
			res = append(res, openai.UserMessage(m.Content))
		}
	}
	return res
}

func assistantMessage(m domain.Message) openai.ChatCompletionMessageParamUnion {
	var asst openai.ChatCompletionAssistantMessageParam
	if m.Content != "" {
		asst.Content.OfString = openai.String(m.Content)
	}
	for _, tc := range m.ToolCalls {
		asst.ToolCalls = append(asst.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: tc.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			},
		})
	}
	return openai.ChatCompletionMessageParamUnion{OfAssistant: &asst}
}

func toTools(defs []domain.ToolDefinition) ([]openai.ChatCompletionToolUnionParam, error) {
	if len(defs) == 0 {
		return nil, nil
	}

	res := make([]openai.ChatCompletionToolUnionParam, 0, len(defs))
	for _, d := range defs {
		var params shared.FunctionParameters
		if d.Parameters != nil {
			data, err := json.Marshal(d.Parameters)
			if err != nil {
				return nil, fmt.Errorf("encode schema for %s: %w", d.Name, err)
			}
			if err := json.Unmarshal(data, &params); err != nil {
				return nil, fmt.Errorf("encode schema for %s: %w", d.Name, err)
			}
		}

		res = append(res, openai.ChatCompletionFunctionTool(shared.FunctionDefinitionParam{
			Name:        d.Name,
			Description: openai.String(d.Description),
			Parameters:  params,
		}))
	}
	return res, nil
}
