package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/pgvector/pgvector-go"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
	"docqa/internal/domain/services"
)

// Fakes

type fakeDocRepo struct {
	docs    map[string]*models.Document
	deleted []string
}

func (r *fakeDocRepo) Create(ctx context.Context, doc *models.Document) error {
	r.docs[doc.ID] = doc
	return nil
}

func (r *fakeDocRepo) GetByID(ctx context.Context, documentID, userID string) (*models.Document, error) {
	doc, ok := r.docs[documentID]
	if !ok || doc.UserID != userID {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	return doc, nil
}

func (r *fakeDocRepo) ListByUser(ctx context.Context, userID string) ([]models.Document, error) {
	return nil, nil
}

func (r *fakeDocRepo) Delete(ctx context.Context, documentID, userID string) error {
	if _, ok := r.docs[documentID]; !ok {
		return fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	delete(r.docs, documentID)
	r.deleted = append(r.deleted, documentID)
	return nil
}

type fakeChunkRepo struct {
	chunks    []models.Chunk
	createErr error
}

func (r *fakeChunkRepo) CreateBatch(ctx context.Context, chunks []models.Chunk) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.chunks = append(r.chunks, chunks...)
	return nil
}

func (r *fakeChunkRepo) Search(ctx context.Context, documentID string, query pgvector.Vector, threshold float64, limit int) ([]models.ScoredChunk, error) {
	return nil, nil
}

func (r *fakeChunkRepo) CountByDocument(ctx context.Context, documentID string) (int, error) {
	count := 0
	for _, c := range r.chunks {
		if c.DocumentID == documentID {
			count++
		}
	}
	return count, nil
}

type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, mediaType string) (string, error) {
	return f.text, f.err
}

// fakeEmbedder tags each vector's first component with the input ordinal
type fakeEmbedder struct {
	err error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0, 1, 2}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{float32(i), 1, 2}
	}
	return vectors, nil
}

func (f *fakeEmbedder) Dimension() int { return 3 }

type fakeTxManager struct{}

func (f *fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}

// Fixture

type fixture struct {
	svc       services.IngestService
	docRepo   *fakeDocRepo
	chunkRepo *fakeChunkRepo
	extractor *fakeExtractor
	embedder  *fakeEmbedder
}

func newFixture() *fixture {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	f := &fixture{
		docRepo:   &fakeDocRepo{docs: map[string]*models.Document{}},
		chunkRepo: &fakeChunkRepo{},
		extractor: &fakeExtractor{text: "First sentence. Second sentence. Third sentence."},
		embedder:  &fakeEmbedder{},
	}
	cfg := &config.Config{ChunkTargetSize: 20}
	f.svc = NewService(f.docRepo, f.chunkRepo, f.extractor, f.embedder, &fakeTxManager{}, cfg, logger)
	return f
}

func validRequest() *services.IngestRequest {
	return &services.IngestRequest{
		UserID:    "user-1",
		Filename:  "notes.txt",
		MediaType: services.MediaTypeText,
		Data:      []byte("some uploaded bytes"),
	}
}

// Tests

func TestIngest_StoresAlignedChunks(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Ingest(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	// Three sentences, target size 20: each becomes its own chunk
	if doc.ChunkCount != 3 {
		t.Fatalf("expected 3 chunks, got %d", doc.ChunkCount)
	}
	if len(f.chunkRepo.chunks) != 3 {
		t.Fatalf("expected 3 stored chunks, got %d", len(f.chunkRepo.chunks))
	}

	for i, chunk := range f.chunkRepo.chunks {
		if chunk.DocumentID != doc.ID {
			t.Errorf("chunk %d belongs to %q, want %q", i, chunk.DocumentID, doc.ID)
		}
		if chunk.Ordinal != i {
			t.Errorf("chunk %d has ordinal %d, ordinals must be contiguous from 0", i, chunk.Ordinal)
		}
		// The fake embedder tags vectors with the input ordinal
		if got := chunk.Embedding.Slice()[0]; int(got) != i {
			t.Errorf("chunk %d carries embedding for ordinal %v", i, got)
		}
	}
}

func TestIngest_ExtractionFailureCreatesNothing(t *testing.T) {
	f := newFixture()
	f.extractor.err = &domain.UnsupportedMediaError{MediaType: "application/zip"}

	_, err := f.svc.Ingest(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
	if len(f.docRepo.docs) != 0 {
		t.Error("no document row may exist after extraction failure")
	}
}

func TestIngest_EmbeddingFailureRollsBackDocument(t *testing.T) {
	f := newFixture()
	f.embedder.err = fmt.Errorf("model down: %w", domain.ErrExternalService)

	_, err := f.svc.Ingest(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected ErrExternalService, got %v", err)
	}

	if len(f.docRepo.docs) != 0 {
		t.Error("document row must be removed when embedding fails")
	}
	if len(f.docRepo.deleted) != 1 {
		t.Errorf("expected 1 compensating delete, got %d", len(f.docRepo.deleted))
	}
	if len(f.chunkRepo.chunks) != 0 {
		t.Errorf("no chunks may remain, got %d", len(f.chunkRepo.chunks))
	}
}

func TestIngest_ChunkStoreFailureRollsBackDocument(t *testing.T) {
	f := newFixture()
	f.chunkRepo.createErr = fmt.Errorf("write failed: %w", domain.ErrPersistence)

	_, err := f.svc.Ingest(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(f.docRepo.docs) != 0 {
		t.Error("document row must be removed when chunk storage fails")
	}
}

func TestIngest_EmptyExtractedTextRejected(t *testing.T) {
	f := newFixture()
	f.extractor.text = "   \n  "

	_, err := f.svc.Ingest(context.Background(), validRequest())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty text, got %v", err)
	}
	if len(f.docRepo.docs) != 0 {
		t.Error("document row must be rolled back for empty text")
	}
}

func TestIngest_Validation(t *testing.T) {
	f := newFixture()

	req := validRequest()
	req.Data = nil

	_, err := f.svc.Ingest(context.Background(), req)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation for empty upload, got %v", err)
	}
}

func TestGetDocument_IncludesChunkCount(t *testing.T) {
	f := newFixture()

	doc, err := f.svc.Ingest(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	got, err := f.svc.GetDocument(context.Background(), doc.ID, "user-1")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if got.ChunkCount != 3 {
		t.Errorf("expected chunk count 3, got %d", got.ChunkCount)
	}
}
