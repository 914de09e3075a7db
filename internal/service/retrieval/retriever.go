// Package retrieval answers similarity queries scoped to one document.
package retrieval

import (
	"context"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"docqa/internal/config"
	"docqa/internal/domain/repositories"
	"docqa/internal/domain/services"
)

// Retriever embeds query text and searches a document's chunk vectors.
type Retriever struct {
	embedder  services.Embedder
	chunkRepo repositories.ChunkRepository
	threshold float64
	limit     int
	logger    *slog.Logger
}

// NewRetriever creates a retriever with the configured similarity threshold
// and result cap.
func NewRetriever(
	embedder services.Embedder,
	chunkRepo repositories.ChunkRepository,
	cfg *config.Config,
	logger *slog.Logger,
) services.Retriever {
	return &Retriever{
		embedder:  embedder,
		chunkRepo: chunkRepo,
		threshold: cfg.MatchThreshold,
		limit:     cfg.MatchCount,
		logger:    logger,
	}
}

// Retrieve embeds the query and searches the document's chunks. Failures
// are reported through the outcome tag rather than an error return so
// callers can distinguish "nothing matched" from "could not look":
// embedding or store failures yield RetrievalDegraded, an empty result
// yields RetrievalNoMatch.
func (r *Retriever) Retrieve(ctx context.Context, documentID, query string) services.RetrievalOutcome {
	queryVec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return services.RetrievalOutcome{Status: services.RetrievalDegraded, Err: err}
	}

	matches, err := r.chunkRepo.Search(ctx, documentID, pgvector.NewVector(queryVec), r.threshold, r.limit)
	if err != nil {
		return services.RetrievalOutcome{Status: services.RetrievalDegraded, Err: err}
	}

	if len(matches) == 0 {
		return services.RetrievalOutcome{Status: services.RetrievalNoMatch, Matches: matches}
	}

	r.logger.Debug("chunks retrieved",
		"document_id", documentID,
		"matches", len(matches),
		"top_similarity", matches[0].Similarity,
	)

	return services.RetrievalOutcome{Status: services.RetrievalOK, Matches: matches}
}
