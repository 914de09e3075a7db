package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/pgvector/pgvector-go"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/services"
)

type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type fakeChunkRepo struct {
	matches    []models.ScoredChunk
	err        error
	lastDocID  string
	lastThresh float64
	lastLimit  int
}

func (r *fakeChunkRepo) CreateBatch(ctx context.Context, chunks []models.Chunk) error { return nil }

func (r *fakeChunkRepo) Search(ctx context.Context, documentID string, query pgvector.Vector, threshold float64, limit int) ([]models.ScoredChunk, error) {
	r.lastDocID = documentID
	r.lastThresh = threshold
	r.lastLimit = limit
	return r.matches, r.err
}

func (r *fakeChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	return 0, nil
}

func newRetriever(embedder *fakeEmbedder, repo *fakeChunkRepo) services.Retriever {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	cfg := &config.Config{MatchThreshold: 0.7, MatchCount: 5}
	return NewRetriever(embedder, repo, cfg, logger)
}

func TestRetrieve_PassesScopeAndDefaults(t *testing.T) {
	repo := &fakeChunkRepo{matches: []models.ScoredChunk{{Content: "hit", Similarity: 0.9}}}
	r := newRetriever(&fakeEmbedder{}, repo)

	outcome := r.Retrieve(context.Background(), "doc-1", "query")

	if outcome.Status != services.RetrievalOK {
		t.Fatalf("expected RetrievalOK, got %v (err=%v)", outcome.Status, outcome.Err)
	}
	if len(outcome.Matches) != 1 || outcome.Matches[0].Content != "hit" {
		t.Errorf("unexpected matches: %+v", outcome.Matches)
	}
	if repo.lastDocID != "doc-1" {
		t.Errorf("query not scoped to document: %q", repo.lastDocID)
	}
	if repo.lastThresh != 0.7 || repo.lastLimit != 5 {
		t.Errorf("expected threshold 0.7 and limit 5, got %v / %d", repo.lastThresh, repo.lastLimit)
	}
}

func TestRetrieve_NoMatchIsNotDegraded(t *testing.T) {
	r := newRetriever(&fakeEmbedder{}, &fakeChunkRepo{matches: []models.ScoredChunk{}})

	outcome := r.Retrieve(context.Background(), "doc-1", "query")

	if outcome.Status != services.RetrievalNoMatch {
		t.Fatalf("expected RetrievalNoMatch, got %v", outcome.Status)
	}
	if outcome.Err != nil {
		t.Errorf("no-match outcome must not carry an error, got %v", outcome.Err)
	}
}

func TestRetrieve_EmbeddingFailureIsDegraded(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("down: %w", domain.ErrExternalService)}
	r := newRetriever(embedder, &fakeChunkRepo{})

	outcome := r.Retrieve(context.Background(), "doc-1", "query")

	if outcome.Status != services.RetrievalDegraded {
		t.Fatalf("expected RetrievalDegraded, got %v", outcome.Status)
	}
	if outcome.Err == nil {
		t.Error("degraded outcome must carry the cause")
	}
}

func TestRetrieve_StoreFailureIsDegraded(t *testing.T) {
	repo := &fakeChunkRepo{err: fmt.Errorf("query failed: %w", domain.ErrPersistence)}
	r := newRetriever(&fakeEmbedder{}, repo)

	outcome := r.Retrieve(context.Background(), "doc-1", "query")

	if outcome.Status != services.RetrievalDegraded {
		t.Fatalf("expected RetrievalDegraded, got %v", outcome.Status)
	}
}
