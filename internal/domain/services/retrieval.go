package services

import (
	"context"

	"docqa/internal/domain/models"
)

// RetrievalStatus distinguishes an empty result caused by no chunk meeting
// the threshold from one caused by a failed embedding or store call, so
// callers can log the degraded case without conflating the two.
type RetrievalStatus int

const (
	// RetrievalOK means at least one chunk met the similarity threshold.
	RetrievalOK RetrievalStatus = iota

	// RetrievalNoMatch means the query ran but nothing met the threshold.
	RetrievalNoMatch

	// RetrievalDegraded means the query could not be run; Err carries the
	// cause. Chat falls back to an empty context rather than failing.
	RetrievalDegraded
)

// RetrievalOutcome is the tagged result of a retrieval attempt.
type RetrievalOutcome struct {
	Status  RetrievalStatus
	Matches []models.ScoredChunk
	Err     error
}

// Retriever answers nearest-neighbor queries scoped to one document.
type Retriever interface {
	// Retrieve embeds the query text and searches the document's chunks.
	// It never returns an error; failures are reported via the outcome tag.
	Retrieve(ctx context.Context, documentID, query string) RetrievalOutcome
}
