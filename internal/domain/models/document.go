package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Document represents an uploaded file whose extracted text has been
// chunked and embedded. A document either has its complete chunk set or no
// chunks at all; ingestion deletes the row on any partial failure.
type Document struct {
	ID            string    `json:"id" db:"id"`
	UserID        string    `json:"user_id" db:"user_id"`
	Filename      string    `json:"filename" db:"filename"`
	MediaType     string    `json:"media_type" db:"media_type"`
	StoragePath   string    `json:"storage_path" db:"storage_path"`
	FileSize      int64     `json:"file_size" db:"file_size"`
	ExtractedText string    `json:"extracted_text,omitempty" db:"extracted_text"`
	ChunkCount    int       `json:"chunk_count" db:"-"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Chunk is a bounded-size slice of a document's extracted text with its
// embedding vector. Ordinals are contiguous from 0 in original-text order.
// Chunks are immutable after creation and deleted only with their document.
type Chunk struct {
	ID         string          `json:"id" db:"id"`
	DocumentID string          `json:"document_id" db:"document_id"`
	Ordinal    int             `json:"ordinal" db:"ordinal"`
	Content    string          `json:"content" db:"content"`
	Embedding  pgvector.Vector `json:"-" db:"embedding"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// ScoredChunk is a retrieval result: chunk text plus its cosine similarity
// to the query vector.
type ScoredChunk struct {
	Content    string  `json:"content"`
	Ordinal    int     `json:"ordinal"`
	Similarity float64 `json:"similarity"`
}
