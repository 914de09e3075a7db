package services

import "context"

// Embedder converts text into fixed-dimensionality vectors using an
// external embedding model.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, index-aligned with the
	// input regardless of how the underlying requests are issued. A failure
	// of any request fails the whole batch.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimension returns the dimensionality of produced vectors.
	Dimension() int
}
