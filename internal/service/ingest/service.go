// Package ingest owns the upload-to-vector pipeline.
package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"docqa/internal/config"
	"docqa/internal/domain"
	"docqa/internal/domain/models"
	"docqa/internal/domain/repositories"
	"docqa/internal/domain/services"
	"docqa/internal/service/chunker"
)

// ingestService implements the IngestService interface
type ingestService struct {
	docRepo   repositories.DocumentRepository
	chunkRepo repositories.ChunkRepository
	extractor services.TextExtractor
	embedder  services.Embedder
	txManager repositories.TransactionManager
	chunkSize int
	logger    *slog.Logger
}

// NewService creates a new ingestion service
func NewService(
	docRepo repositories.DocumentRepository,
	chunkRepo repositories.ChunkRepository,
	extractor services.TextExtractor,
	embedder services.Embedder,
	txManager repositories.TransactionManager,
	cfg *config.Config,
	logger *slog.Logger,
) services.IngestService {
	return &ingestService{
		docRepo:   docRepo,
		chunkRepo: chunkRepo,
		extractor: extractor,
		embedder:  embedder,
		txManager: txManager,
		chunkSize: cfg.ChunkTargetSize,
		logger:    logger,
	}
}

// Ingest runs extraction, chunking, embedding, and storage for one upload.
//
// The pipeline is a saga: the document row is created after extraction
// succeeds, and any later failure (chunk storage, embedding, cancellation)
// runs a compensating delete of the row, which cascades to any chunks
// already written. A document therefore always has its complete embedded
// chunk set or does not exist.
func (s *ingestService) Ingest(ctx context.Context, req *services.IngestRequest) (*models.Document, error) {
	if err := s.validateIngestRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	// Extraction happens before any persistence, so extraction failures
	// leave no partial state
	text, err := s.extractor.Extract(ctx, req.Data, req.MediaType)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	doc := &models.Document{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Filename:      req.Filename,
		MediaType:     req.MediaType,
		StoragePath:   fmt.Sprintf("%s/%s", req.UserID, req.Filename),
		FileSize:      int64(len(req.Data)),
		ExtractedText: text,
		CreatedAt:     now,
	}

	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	chunkCount, err := s.storeChunks(ctx, doc, text, now)
	if err != nil {
		s.compensate(ctx, doc)
		return nil, err
	}
	doc.ChunkCount = chunkCount

	s.logger.Info("document ingested",
		"id", doc.ID,
		"user_id", doc.UserID,
		"filename", doc.Filename,
		"media_type", doc.MediaType,
		"chunks", chunkCount,
	)

	return doc, nil
}

// storeChunks chunks the text, embeds every chunk, and stores the complete
// set. A partial embedding set fails the whole ingestion.
func (s *ingestService) storeChunks(ctx context.Context, doc *models.Document, text string, now time.Time) (int, error) {
	texts := chunker.Chunk(text, s.chunkSize)
	if len(texts) == 0 {
		return 0, fmt.Errorf("%w: document contains no extractable text", domain.ErrValidation)
	}

	vectors, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, err
	}
	if len(vectors) != len(texts) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d chunks", domain.ErrExternalService, len(vectors), len(texts))
	}

	chunks := make([]models.Chunk, len(texts))
	for i, content := range texts {
		chunks[i] = models.Chunk{
			ID:         uuid.NewString(),
			DocumentID: doc.ID,
			Ordinal:    i,
			Content:    content,
			Embedding:  pgvector.NewVector(vectors[i]),
			CreatedAt:  now,
		}
	}

	// A batch outside a transaction commits each insert individually, so
	// run the whole set in one transaction to keep the chunk set complete
	// or absent even before compensation fires.
	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		return s.chunkRepo.CreateBatch(txCtx, chunks)
	})
	if err != nil {
		return 0, err
	}

	return len(chunks), nil
}

// compensate removes the document row created earlier in the saga. It runs
// on a fresh context so cancellation of the ingest request cannot abort the
// cleanup that cancellation itself triggered.
func (s *ingestService) compensate(ctx context.Context, doc *models.Document) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := s.docRepo.Delete(cleanupCtx, doc.ID, doc.UserID); err != nil {
		s.logger.Error("ingestion compensation failed, document may have partial chunks",
			"document_id", doc.ID,
			"error", err,
		)
		return
	}

	s.logger.Warn("ingestion rolled back",
		"document_id", doc.ID,
		"filename", doc.Filename,
	)
}

// GetDocument retrieves a document owned by the user, including its chunk
// count
func (s *ingestService) GetDocument(ctx context.Context, documentID, userID string) (*models.Document, error) {
	if documentID == "" {
		return nil, fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}

	doc, err := s.docRepo.GetByID(ctx, documentID, userID)
	if err != nil {
		return nil, err
	}

	count, err := s.chunkRepo.CountByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	doc.ChunkCount = count

	return doc, nil
}

// ListDocuments retrieves all documents owned by the user
func (s *ingestService) ListDocuments(ctx context.Context, userID string) ([]models.Document, error) {
	return s.docRepo.ListByUser(ctx, userID)
}

// DeleteDocument removes a document and its chunks
func (s *ingestService) DeleteDocument(ctx context.Context, documentID, userID string) error {
	if documentID == "" {
		return fmt.Errorf("%w: document id is required", domain.ErrValidation)
	}

	if err := s.docRepo.Delete(ctx, documentID, userID); err != nil {
		return err
	}

	s.logger.Info("document deleted",
		"id", documentID,
		"user_id", userID,
	)

	return nil
}

func (s *ingestService) validateIngestRequest(req *services.IngestRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.UserID, validation.Required),
		validation.Field(&req.Filename,
			validation.Required,
			validation.Length(1, config.MaxFilenameLength),
		),
		validation.Field(&req.MediaType, validation.Required),
		validation.Field(&req.Data,
			validation.Required,
			validation.Length(1, config.MaxUploadBytes),
		),
	)
}
