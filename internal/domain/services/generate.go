package services

import "context"

// ChatTurn is one prior message handed to the generative model.
type ChatTurn struct {
	// Role is either "user" or "assistant"
	Role string

	// Content is the plain-text content of the turn
	Content string
}

// GenerateRequest contains the parameters for a generation request.
type GenerateRequest struct {
	// System is the system instruction, including the retrieved context.
	System string

	// Turns is the conversation history in chronological order, ending
	// with the new user message.
	Turns []ChatTurn
}

// Generator produces a model response for an assembled conversation.
// Implementations wrap one provider; the conversation service stays
// provider-agnostic.
type Generator interface {
	// Generate returns the model's reply text.
	Generate(ctx context.Context, req *GenerateRequest) (string, error)

	// DescribeImage asks a vision-capable model for a detailed description
	// of visible text, diagrams, and tables in the image.
	DescribeImage(ctx context.Context, data []byte, mediaType string) (string, error)

	// Name returns the provider name (e.g. "anthropic").
	Name() string
}
