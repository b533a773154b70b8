package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/kritsada-w/collectra/agent/contract"
)

// Oracle adapts one compiled chat-model graph to the PolicyOracle contract.
// The system prompt and payload are passed as template variables, so brace
// characters inside either never collide with the template format.
type Oracle struct {
	runner compose.Runnable[map[string]any, *schema.Message]
}

var _ contractx.PolicyOracle = (*Oracle)(nil)

func NewOracle(ctx context.Context, chatModel einomodel.BaseChatModel, graphName string) (*Oracle, error) {
	template := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{input}"),
	)

	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", template); err != nil {
		return nil, fmt.Errorf("add oracle prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add oracle model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add oracle edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add oracle edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add oracle edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile oracle graph %s: %w", graphName, err)
	}
	return &Oracle{runner: runner}, nil
}

func (o *Oracle) GenerateStructured(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return o.invoke(ctx, systemPrompt, userPayload)
}

func (o *Oracle) GenerateText(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return o.invoke(ctx, systemPrompt, userPayload)
}

func (o *Oracle) invoke(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	msg, err := o.runner.Invoke(ctx, map[string]any{
		"system": systemPrompt,
		"input":  userPayload,
	})
	if err != nil {
		return "", fmt.Errorf("%w: oracle invoke: %v", contractx.ErrModelInvoke, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: oracle returned empty message", contractx.ErrSchemaViolation)
	}
	return msg.Content, nil
}
