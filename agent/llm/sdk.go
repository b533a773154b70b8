package llm

import (
	"context"
	"fmt"
	"strings"

	contractx "github.com/kritsada-w/collectra/agent/contract"
	openrouterx "github.com/kritsada-w/collectra/pkg/openrouter"
	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"
)

// SDKOracle calls the chat completion endpoint through the raw OpenRouter
// client instead of a compiled graph. Suited to one-shot calls such as
// history ingestion, where no graph orchestration is involved.
type SDKOracle struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
}

var _ contractx.PolicyOracle = (*SDKOracle)(nil)

func NewSDKOracle(cfg openrouterx.Config) (*SDKOracle, error) {
	client := openrouterx.NewClient(cfg)
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	modelName := strings.TrimSpace(cfg.Model)
	if modelName == "" {
		return nil, fmt.Errorf("%w: openrouter model is required", contractx.ErrValidation)
	}

	o := &SDKOracle{
		client:      client,
		model:       modelName,
		temperature: float64(cfg.Temperature),
	}
	if cfg.MaxCompletionToken != nil && *cfg.MaxCompletionToken > 0 {
		o.maxTokens = int64(*cfg.MaxCompletionToken)
	}
	return o, nil
}

func (o *SDKOracle) GenerateStructured(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return o.complete(ctx, systemPrompt, userPayload)
}

func (o *SDKOracle) GenerateText(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	return o.complete(ctx, systemPrompt, userPayload)
}

func (o *SDKOracle) complete(ctx context.Context, systemPrompt, userPayload string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: shared.ChatModel(o.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(systemPrompt),
			openaisdk.UserMessage(userPayload),
		},
		Temperature: openaisdk.Float(o.temperature),
	}
	if o.maxTokens > 0 {
		params.MaxTokens = openaisdk.Int(o.maxTokens)
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %v", contractx.ErrModelInvoke, err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", fmt.Errorf("%w: chat completion returned no content", contractx.ErrSchemaViolation)
	}
	return resp.Choices[0].Message.Content, nil
}
