// Package llm wraps generative model providers behind the Generator
// interface.
package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"docqa/internal/domain"
	"docqa/internal/domain/services"
)

const (
	defaultMaxTokens = 4096

	// visionPrompt asks the model to turn an image into text usable as a
	// document body.
	visionPrompt = "Describe this image in detail. Transcribe any visible text verbatim, " +
		"and describe every diagram, chart, and table including their data. " +
		"The description will be used as the searchable text content of this image."
)

// AnthropicProvider implements the Generator interface for Claude models.
type AnthropicProvider struct {
	client          *anthropic.Client
	generationModel string
	visionModel     string
}

// NewAnthropicProvider creates a new Anthropic provider with the given API
// key. The client is constructed once at startup and passed to components;
// no ambient global state.
func NewAnthropicProvider(apiKey, generationModel, visionModel string) (services.Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicProvider{
		client:          &client,
		generationModel: generationModel,
		visionModel:     visionModel,
	}, nil
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Generate produces a reply for the assembled conversation.
func (p *AnthropicProvider) Generate(ctx context.Context, req *services.GenerateRequest) (string, error) {
	messages, err := convertTurns(req.Turns)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(p.generationModel),
		Messages:  messages,
		MaxTokens: defaultMaxTokens,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{
			{Type: "text", Text: req.System},
		}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic generation: %w: %v", domain.ErrExternalService, err)
	}

	text := collectText(message)
	if text == "" {
		return "", fmt.Errorf("anthropic generation: %w: empty response", domain.ErrExternalService)
	}

	return text, nil
}

// DescribeImage asks the vision model for a detailed description of the
// image's visible text, diagrams, and tables.
func (p *AnthropicProvider) DescribeImage(ctx context.Context, data []byte, mediaType string) (string, error) {
	encoded := base64.StdEncoding.EncodeToString(data)

	message, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.visionModel),
		MaxTokens: defaultMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewImageBlockBase64(mediaType, encoded),
				anthropic.NewTextBlock(visionPrompt),
			),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic vision: %w: %v", domain.ErrExternalService, err)
	}

	text := collectText(message)
	if text == "" {
		return "", fmt.Errorf("anthropic vision: %w: empty description", domain.ErrExternalService)
	}

	return text, nil
}

// convertTurns converts conversation turns to Anthropic message params.
func convertTurns(turns []services.ChatTurn) ([]anthropic.MessageParam, error) {
	result := make([]anthropic.MessageParam, 0, len(turns))

	for i, turn := range turns {
		block := anthropic.NewTextBlock(turn.Content)

		switch turn.Role {
		case "user":
			result = append(result, anthropic.NewUserMessage(block))
		case "assistant":
			result = append(result, anthropic.NewAssistantMessage(block))
		default:
			return nil, fmt.Errorf("turn %d: unsupported role '%s'", i, turn.Role)
		}
	}

	return result, nil
}

// collectText concatenates the text blocks of a response.
func collectText(msg *anthropic.Message) string {
	var b strings.Builder
	for _, content := range msg.Content {
		if content.Type == "text" {
			b.WriteString(content.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
